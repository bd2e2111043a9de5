// Package worker runs the ledger export pipeline: AMQP events in,
// spreadsheet rows out.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/ledger"
)

// TransactionReader fetches a single transaction for export.
type TransactionReader interface {
	TransactionByID(ctx context.Context, userID, txID string) (core.Transaction, error)
}

// RowAppender appends an exported transaction row.
type RowAppender interface {
	AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error)
}

// ExportWorker consumes ledger events and mirrors created
// transactions into the export spreadsheet. Deletions are logged
// only; the spreadsheet is an append-only journal.
type ExportWorker struct {
	store  TransactionReader
	sheets RowAppender
}

func NewExportWorker(store TransactionReader, sheets RowAppender) *ExportWorker {
	return &ExportWorker{store: store, sheets: sheets}
}

// HandleEvent processes one ledger event. A returned error requeues
// the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	switch msg.Kind {
	case amqp.KindTransactionCreated:
		return w.exportCreated(ctx, msg)
	case amqp.KindTransactionDeleted:
		slog.InfoContext(ctx, "Transaction deleted, journal row kept",
			"user_id", msg.UserID,
			"transaction_id", msg.TransactionID)
		return nil
	default:
		slog.WarnContext(ctx, "Skipping event of unknown kind", "kind", msg.Kind)
		return nil
	}
}

func (w *ExportWorker) exportCreated(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	tx, err := w.store.TransactionByID(ctx, msg.UserID, msg.TransactionID)
	if errors.Is(err, ledger.ErrNotFound) {
		// deleted before the event was processed; nothing to export
		slog.WarnContext(ctx, "Transaction gone before export, skipping",
			"user_id", msg.UserID,
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction for export: %w", err)
	}

	ref, err := w.sheets.AppendTransaction(ctx, msg.UserID, tx)
	if err != nil {
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"user_id", msg.UserID,
		"transaction_id", msg.TransactionID,
		"sheet_ref", ref)
	return nil
}
