// Package storage provides the SQLite persistence layer behind the
// auth and ledger ports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Default reference data seeded for every new user.
var (
	defaultIncomeAccounts  = []string{"Salary", "Bonus"}
	defaultExpenseAccounts = []string{"Food", "Transport", "Shopping", "Bills"}
	defaultWalletName      = "Cash"
	defaultAccentColor     = "#4a90d9"
)

// SQLiteRepository implements auth.Store and ledger.Store over a
// single SQLite database. Amounts are stored as decimal strings so no
// precision is lost between write and read.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- auth.Store ---

// CreateUser inserts the identity and seeds the user's starting
// reference data in one transaction: default accounts, a first
// wallet, an empty profile and the default accent color.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u auth.User, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, photo_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, passwordHash, u.DisplayName, u.PhotoURL, u.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	for i, name := range defaultIncomeAccounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (user_id, type, name, position) VALUES (?, 'income', ?, ?)`,
			u.ID, name, i); err != nil {
			return fmt.Errorf("seed income account: %w", err)
		}
	}
	for i, name := range defaultExpenseAccounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (user_id, type, name, position) VALUES (?, 'expense', ?, ?)`,
			u.ID, name, i); err != nil {
			return fmt.Errorf("seed expense account: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (id, user_id, name, balance) VALUES (?, ?, ?, '0')`,
		uuid.NewString(), u.ID, defaultWalletName); err != nil {
		return fmt.Errorf("seed wallet: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, email) VALUES (?, ?, ?)`,
		u.ID, u.DisplayName, u.Email); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO preferences (user_id, accent_color) VALUES (?, ?)`,
		u.ID, defaultAccentColor); err != nil {
		return fmt.Errorf("seed preferences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "email", u.Email)
	return nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (auth.User, string, error) {
	var u auth.User
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, display_name, photo_url, created_at
		 FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &hash, &u.DisplayName, &u.PhotoURL, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, "", auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, "", fmt.Errorf("select user by email: %w", err)
	}
	return u, hash, nil
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (auth.User, error) {
	var u auth.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, photo_url, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateUserDisplayName(ctx context.Context, userID, displayName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ? WHERE id = ?`, displayName, userID)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s auth.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		s.Token, s.UserID, s.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SessionByToken(ctx context.Context, token string) (auth.Session, error) {
	var s auth.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.UserID, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("select session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// --- ledger.Store ---

func (r *SQLiteRepository) Accounts(ctx context.Context, userID string) (core.AccountSet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, name FROM accounts WHERE user_id = ? ORDER BY type, position, id`, userID)
	if err != nil {
		return core.AccountSet{}, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var set core.AccountSet
	for rows.Next() {
		var typ, name string
		if err := rows.Scan(&typ, &name); err != nil {
			return core.AccountSet{}, fmt.Errorf("scan account: %w", err)
		}
		switch core.TransactionType(typ) {
		case core.Income:
			set.Income = append(set.Income, name)
		case core.Expense:
			set.Expense = append(set.Expense, name)
		}
	}
	if err := rows.Err(); err != nil {
		return core.AccountSet{}, fmt.Errorf("iterate accounts: %w", err)
	}
	return set, nil
}

// AddAccount appends the name to the end of the list for its type.
// The position is assigned inside the same transaction, so two
// concurrent adds cannot overwrite each other.
func (r *SQLiteRepository) AddAccount(ctx context.Context, userID string, t core.TransactionType, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM accounts WHERE user_id = ? AND type = ?`,
		userID, string(t)).Scan(&next)
	if err != nil {
		return fmt.Errorf("next account position: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (user_id, type, name, position) VALUES (?, ?, ?, ?)`,
		userID, string(t), name, next); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit account: %w", err)
	}
	return nil
}

// RemoveAccount deletes every entry matching the name, not just the
// first. Removing a name that is not present is a no-op.
func (r *SQLiteRepository) RemoveAccount(ctx context.Context, userID string, t core.TransactionType, name string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND type = ? AND name = ?`,
		userID, string(t), name); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Wallets(ctx context.Context, userID string) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance FROM wallets WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("select wallets: %w", err)
	}
	defer rows.Close()

	var wallets []core.Wallet
	for rows.Next() {
		var w core.Wallet
		var balance string
		if err := rows.Scan(&w.ID, &w.Name, &balance); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		w.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parse wallet balance %q: %w", balance, err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

func (r *SQLiteRepository) CreateWallet(ctx context.Context, userID, name string) (core.Wallet, error) {
	w := core.Wallet{ID: uuid.NewString(), Name: name, Balance: decimal.Zero}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (id, user_id, name, balance) VALUES (?, ?, ?, '0')`,
		w.ID, userID, name); err != nil {
		return core.Wallet{}, fmt.Errorf("insert wallet: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) DeleteWallet(ctx context.Context, userID, walletID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM wallets WHERE user_id = ? AND id = ?`, userID, walletID); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Transactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tx_date, type, account, wallet, description, amount, timestamp_ms
		 FROM transactions WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) TransactionByID(ctx context.Context, userID, txID string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tx_date, type, account, wallet, description, amount, timestamp_ms
		 FROM transactions WHERE user_id = ? AND id = ?`, userID, txID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return tx, err
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, tx_date, type, account, wallet, description, amount, timestamp_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Date.ISO(), string(tx.Type), tx.Account, tx.Wallet,
		tx.Description, tx.Amount.String(), tx.Timestamp); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, txID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, txID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Profile(ctx context.Context, userID string) (core.Profile, error) {
	var p core.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT display_name, first_name, last_name, email FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.DisplayName, &p.FirstName, &p.LastName, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	return p, nil
}

// SaveProfile overwrites the whole profile record.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, userID string, p core.Profile) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, first_name, last_name, email)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   email = excluded.email`,
		userID, p.DisplayName, p.FirstName, p.LastName, p.Email); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AccentColor(ctx context.Context, userID string) (string, error) {
	var hex string
	err := r.db.QueryRowContext(ctx,
		`SELECT accent_color FROM preferences WHERE user_id = ?`, userID).Scan(&hex)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultAccentColor, nil
	}
	if err != nil {
		return "", fmt.Errorf("select accent color: %w", err)
	}
	return hex, nil
}

func (r *SQLiteRepository) SetAccentColor(ctx context.Context, userID, hex string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id, accent_color) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET accent_color = excluded.accent_color`,
		userID, hex); err != nil {
		return fmt.Errorf("set accent color: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var date, typ, amount string
	if err := row.Scan(&tx.ID, &date, &typ, &tx.Account, &tx.Wallet,
		&tx.Description, &amount, &tx.Timestamp); err != nil {
		return core.Transaction{}, err
	}

	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	tx.Date = parsed
	tx.Type = core.TransactionType(typ)
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	return tx, nil
}
