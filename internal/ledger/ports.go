// Package ledger orchestrates transaction, wallet, account and
// profile operations over a Store, publishing change events to AMQP
// and to in-process watchers.
package ledger

import (
	"context"
	"errors"

	"duitku/internal/core"
)

// ErrNotFound is returned by Store implementations for missing
// records.
var ErrNotFound = errors.New("not found")

// ErrUnknownAccount rejects transactions whose account is not in the
// configured list for their type.
var ErrUnknownAccount = errors.New("account not configured for this transaction type")

// Store is the persistence port for per-user ledger data. All paths
// are partitioned by user id.
type Store interface {
	// Reference data
	Accounts(ctx context.Context, userID string) (core.AccountSet, error)
	AddAccount(ctx context.Context, userID string, t core.TransactionType, name string) error
	RemoveAccount(ctx context.Context, userID string, t core.TransactionType, name string) error

	// Wallets
	Wallets(ctx context.Context, userID string) ([]core.Wallet, error)
	CreateWallet(ctx context.Context, userID, name string) (core.Wallet, error)
	DeleteWallet(ctx context.Context, userID, walletID string) error

	// Transactions, in insertion order of the store
	Transactions(ctx context.Context, userID string) ([]core.Transaction, error)
	TransactionByID(ctx context.Context, userID, txID string) (core.Transaction, error)
	AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID string) error

	// Profile, overwritten wholesale on save
	Profile(ctx context.Context, userID string) (core.Profile, error)
	SaveProfile(ctx context.Context, userID string, p core.Profile) error

	// Accent color preference
	AccentColor(ctx context.Context, userID string) (string, error)
	SetAccentColor(ctx context.Context, userID, hex string) error
}

// EventPublisher is the outbound port for the ledger event stream.
// Publishing is best-effort: failures are logged and never fail the
// originating request.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, userID, txID string) error
	PublishTransactionDeleted(ctx context.Context, userID, txID string) error
}
