package worker

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	txs map[string]core.Transaction
	err error
}

func (f *fakeReader) TransactionByID(ctx context.Context, userID, txID string) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	tx, ok := f.txs[txID]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return tx, nil
}

type fakeAppender struct {
	appended []core.Transaction
	err      error
}

func (f *fakeAppender) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, tx)
	return "Ledger!A2:G2", nil
}

func sampleTransaction(id string) core.Transaction {
	date, _ := core.ParseDate("2026-06-01")
	return core.Transaction{
		ID: id, Date: date, Type: core.Expense, Account: "Food", Wallet: "Cash",
		Description: "Sate ayam", Amount: decimal.RequireFromString("35000"),
		Timestamp: date.EpochMillis(),
	}
}

func TestHandleEventCreated(t *testing.T) {
	reader := &fakeReader{txs: map[string]core.Transaction{"tx1": sampleTransaction("tx1")}}
	appender := &fakeAppender{}
	w := NewExportWorker(reader, appender)

	msg := amqp.NewLedgerEventMessage("u1", "tx1", amqp.KindTransactionCreated)
	require.NoError(t, w.HandleEvent(context.Background(), msg))
	require.Len(t, appender.appended, 1)
	assert.Equal(t, "tx1", appender.appended[0].ID)
}

func TestHandleEventCreatedGoneTransaction(t *testing.T) {
	w := NewExportWorker(&fakeReader{txs: map[string]core.Transaction{}}, &fakeAppender{})

	msg := amqp.NewLedgerEventMessage("u1", "gone", amqp.KindTransactionCreated)
	assert.NoError(t, w.HandleEvent(context.Background(), msg))
}

func TestHandleEventAppendFailureRequeues(t *testing.T) {
	reader := &fakeReader{txs: map[string]core.Transaction{"tx1": sampleTransaction("tx1")}}
	appender := &fakeAppender{err: errors.New("quota exceeded")}
	w := NewExportWorker(reader, appender)

	msg := amqp.NewLedgerEventMessage("u1", "tx1", amqp.KindTransactionCreated)
	assert.Error(t, w.HandleEvent(context.Background(), msg))
}

func TestHandleEventDeletedKeepsJournal(t *testing.T) {
	appender := &fakeAppender{}
	w := NewExportWorker(&fakeReader{}, appender)

	msg := amqp.NewLedgerEventMessage("u1", "tx1", amqp.KindTransactionDeleted)
	require.NoError(t, w.HandleEvent(context.Background(), msg))
	assert.Empty(t, appender.appended)
}

func TestHandleEventReaderError(t *testing.T) {
	reader := &fakeReader{err: errors.New("db locked")}
	w := NewExportWorker(reader, &fakeAppender{})

	msg := amqp.NewLedgerEventMessage("u1", "tx1", amqp.KindTransactionCreated)
	assert.Error(t, w.HandleEvent(context.Background(), msg))
}
