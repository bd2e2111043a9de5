package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"duitku/internal/core"

	"github.com/shopspring/decimal"
)

// Service coordinates ledger writes across the store, the AMQP event
// stream and in-process watchers.
type Service struct {
	store     Store
	publisher EventPublisher
	hub       *Hub
}

// NewService creates a Service. publisher and hub may be nil when the
// event stream or live updates are disabled.
func NewService(store Store, publisher EventPublisher, hub *Hub) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		hub:       hub,
	}
}

// CreateTransaction validates and appends a transaction, assigning
// its opaque key and derived timestamp, then notifies watchers.
func (s *Service) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	accounts, err := s.store.Accounts(ctx, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load accounts: %w", err)
	}
	if !accounts.Contains(tx.Type, tx.Account) {
		return core.Transaction{}, ErrUnknownAccount
	}

	tx.Timestamp = tx.Date.EpochMillis()
	saved, err := s.store.AppendTransaction(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"user_id", userID,
		"transaction_id", saved.ID,
		"transaction_type", string(saved.Type),
		"account", saved.Account,
		"amount", saved.Amount.String())

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, userID, saved.ID); err != nil {
			// the transaction is saved; the event stream catches up later
			slog.ErrorContext(ctx, "Failed to publish transaction created event",
				"user_id", userID, "transaction_id", saved.ID, "error", err)
		}
	}
	if s.hub != nil {
		s.hub.Publish(Event{UserID: userID, TransactionID: saved.ID, Kind: EventCreated})
	}
	return saved, nil
}

// DeleteTransaction removes a transaction by key. Deleting an id that
// is already gone is a no-op.
func (s *Service) DeleteTransaction(ctx context.Context, userID, txID string) error {
	if err := s.store.DeleteTransaction(ctx, userID, txID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "user_id", userID, "transaction_id", txID)

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDeleted(ctx, userID, txID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction deleted event",
				"user_id", userID, "transaction_id", txID, "error", err)
		}
	}
	if s.hub != nil {
		s.hub.Publish(Event{UserID: userID, TransactionID: txID, Kind: EventDeleted})
	}
	return nil
}

// Transactions returns the user's ledger in insertion order.
func (s *Service) Transactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, err := s.store.Transactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Overview aggregates the user's ledger for the dashboard.
func (s *Service) Overview(ctx context.Context, userID string) (core.Overview, error) {
	txs, err := s.store.Transactions(ctx, userID)
	if err != nil {
		return core.Overview{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.ComputeOverview(txs), nil
}

// WalletActivity returns the derived net flow per wallet name. Stored
// wallet balances are independent of this figure.
func (s *Service) WalletActivity(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	txs, err := s.store.Transactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.WalletActivity(txs), nil
}
