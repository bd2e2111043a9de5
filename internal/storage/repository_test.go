package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/ledger"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTestUser(t *testing.T, repo *SQLiteRepository, id, email string) {
	t.Helper()
	u := auth.User{ID: id, Email: email, CreatedAt: time.Now()}
	if err := repo.CreateUser(context.Background(), u, "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestCreateUserSeedsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	accounts, err := repo.Accounts(ctx, "u1")
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts.Income) != 2 || accounts.Income[0] != "Salary" {
		t.Errorf("unexpected income accounts: %v", accounts.Income)
	}
	if len(accounts.Expense) != 4 || accounts.Expense[0] != "Food" {
		t.Errorf("unexpected expense accounts: %v", accounts.Expense)
	}

	wallets, err := repo.Wallets(ctx, "u1")
	if err != nil {
		t.Fatalf("wallets: %v", err)
	}
	if len(wallets) != 1 || wallets[0].Name != "Cash" || !wallets[0].Balance.IsZero() {
		t.Errorf("unexpected seeded wallets: %v", wallets)
	}

	hex, err := repo.AccentColor(ctx, "u1")
	if err != nil {
		t.Fatalf("accent color: %v", err)
	}
	if hex != "#4a90d9" {
		t.Errorf("accent color = %q, want default", hex)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	createTestUser(t, repo, "u1", "a@example.com")

	u := auth.User{ID: "u2", Email: "a@example.com", CreatedAt: time.Now()}
	err := repo.CreateUser(context.Background(), u, "hash")
	if !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}

	// failed signup must not leave partial records behind
	if _, err := repo.UserByID(context.Background(), "u2"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("user u2 exists after failed create")
	}
}

func TestUserLookupAndUpdates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	u, hash, err := repo.UserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if u.ID != "u1" || hash != "hash" {
		t.Errorf("got id=%q hash=%q", u.ID, hash)
	}

	if err := repo.UpdateUserPassword(ctx, "u1", "newhash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, hash, _ = repo.UserByEmail(ctx, "a@example.com"); hash != "newhash" {
		t.Errorf("hash = %q after update", hash)
	}

	if err := repo.UpdateUserDisplayName(ctx, "u1", "Budi"); err != nil {
		t.Fatalf("update display name: %v", err)
	}
	if u, _ = repo.UserByID(ctx, "u1"); u.DisplayName != "Budi" {
		t.Errorf("display name = %q", u.DisplayName)
	}

	if err := repo.UpdateUserPassword(ctx, "nope", "x"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("update unknown user: err = %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	sess := auth.Session{Token: "tok", UserID: "u1", ExpiresAt: expires}
	if err := repo.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := repo.SessionByToken(ctx, "tok")
	if err != nil {
		t.Fatalf("session by token: %v", err)
	}
	if got.UserID != "u1" || !got.ExpiresAt.Equal(expires) {
		t.Errorf("got %+v", got)
	}

	if err := repo.DeleteSession(ctx, "tok"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.SessionByToken(ctx, "tok"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("err = %v after delete", err)
	}
	// deleting again is fine
	if err := repo.DeleteSession(ctx, "tok"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestAccountsAddAndRemoveAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	if err := repo.AddAccount(ctx, "u1", core.Expense, "Food"); err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	accounts, _ := repo.Accounts(ctx, "u1")
	count := 0
	for _, n := range accounts.Expense {
		if n == "Food" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("Food appears %d times, want 2", count)
	}
	if accounts.Expense[len(accounts.Expense)-1] != "Food" {
		t.Errorf("added account is not last: %v", accounts.Expense)
	}

	// removal takes every matching entry with it
	if err := repo.RemoveAccount(ctx, "u1", core.Expense, "Food"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	accounts, _ = repo.Accounts(ctx, "u1")
	for _, n := range accounts.Expense {
		if n == "Food" {
			t.Fatalf("Food still present: %v", accounts.Expense)
		}
	}

	// removing a missing name is a no-op
	if err := repo.RemoveAccount(ctx, "u1", core.Income, "Nope"); err != nil {
		t.Errorf("remove missing: %v", err)
	}
}

func TestWalletRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	w, err := repo.CreateWallet(ctx, "u1", "Jago")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if w.ID == "" || !w.Balance.IsZero() {
		t.Errorf("wallet = %+v", w)
	}

	wallets, _ := repo.Wallets(ctx, "u1")
	if len(wallets) != 2 || wallets[1].Name != "Jago" {
		t.Fatalf("wallets = %v", wallets)
	}

	if err := repo.DeleteWallet(ctx, "u1", w.ID); err != nil {
		t.Fatalf("delete wallet: %v", err)
	}
	if err := repo.DeleteWallet(ctx, "u1", w.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
	wallets, _ = repo.Wallets(ctx, "u1")
	if len(wallets) != 1 {
		t.Errorf("wallets after delete = %v", wallets)
	}
}

func TestTransactionAmountSurvivesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	date, _ := core.ParseDate("2026-02-01")
	tx := core.Transaction{
		Date:        date,
		Type:        core.Expense,
		Account:     "Food",
		Wallet:      "Cash",
		Description: "Bakso",
		Amount:      decimal.RequireFromString("100.5"),
		Timestamp:   date.EpochMillis(),
	}

	saved, err := repo.AppendTransaction(ctx, "u1", tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("no id assigned")
	}

	got, err := repo.TransactionByID(ctx, "u1", saved.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.Amount.String() != "100.5" {
		t.Errorf("amount = %q, want 100.5 exactly", got.Amount.String())
	}
	if got.Date.ISO() != "2026-02-01" || got.Timestamp != date.EpochMillis() {
		t.Errorf("date/timestamp mangled: %+v", got)
	}
}

func TestTransactionsInsertionOrderAndScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")
	createTestUser(t, repo, "u2", "b@example.com")

	date, _ := core.ParseDate("2026-02-01")
	for _, desc := range []string{"first", "second", "third"} {
		tx := core.Transaction{
			Date: date, Type: core.Expense, Account: "Food", Wallet: "Cash",
			Description: desc, Amount: decimal.RequireFromString("10"),
			Timestamp: date.EpochMillis(),
		}
		if _, err := repo.AppendTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("append %s: %v", desc, err)
		}
	}

	txs, err := repo.Transactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 || txs[0].Description != "first" || txs[2].Description != "third" {
		t.Errorf("order wrong: %v", txs)
	}

	other, _ := repo.Transactions(ctx, "u2")
	if len(other) != 0 {
		t.Errorf("u2 sees u1's transactions: %v", other)
	}
	if _, err := repo.TransactionByID(ctx, "u2", txs[0].ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("cross-user lookup: err = %v", err)
	}
}

func TestDeleteTransactionIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	date, _ := core.ParseDate("2026-02-01")
	saved, err := repo.AppendTransaction(ctx, "u1", core.Transaction{
		Date: date, Type: core.Income, Account: "Salary", Wallet: "Cash",
		Description: "pay", Amount: decimal.RequireFromString("5000000"),
		Timestamp: date.EpochMillis(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, "u1", saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", saved.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if _, err := repo.TransactionByID(ctx, "u1", saved.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("err = %v after delete", err)
	}
}

func TestProfileSaveOverwritesWholesale(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	p := core.Profile{DisplayName: "Budi Santoso", FirstName: "Budi", LastName: "Santoso", Email: "a@example.com"}
	if err := repo.SaveProfile(ctx, "u1", p); err != nil {
		t.Fatalf("save: %v", err)
	}

	// a save with empty fields clears them
	if err := repo.SaveProfile(ctx, "u1", core.Profile{DisplayName: "Budi"}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := repo.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DisplayName != "Budi" || got.FirstName != "" || got.Email != "" {
		t.Errorf("profile = %+v", got)
	}
}

func TestAccentColor(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "u1", "a@example.com")

	if err := repo.SetAccentColor(ctx, "u1", "#ff8800"); err != nil {
		t.Fatalf("set: %v", err)
	}
	hex, err := repo.AccentColor(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hex != "#ff8800" {
		t.Errorf("hex = %q", hex)
	}

	// unknown users fall back to the default
	hex, err = repo.AccentColor(ctx, "ghost")
	if err != nil || hex != "#4a90d9" {
		t.Errorf("hex = %q, err = %v", hex, err)
	}
}
