package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/ledger"

	"github.com/shopspring/decimal"
)

var (
	_ auth.Store   = (*Store)(nil)
	_ ledger.Store = (*Store)(nil)
)

func TestCreateUserSeedsDefaults(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := auth.User{ID: "u1", Email: "a@example.com", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u, "hash"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.CreateUser(ctx, auth.User{ID: "u2", Email: "a@example.com"}, "hash"); !errors.Is(err, auth.ErrEmailTaken) {
		t.Errorf("duplicate email: err = %v", err)
	}

	accounts, _ := s.Accounts(ctx, "u1")
	if len(accounts.Income) != 2 || len(accounts.Expense) != 4 {
		t.Errorf("accounts = %+v", accounts)
	}
	wallets, _ := s.Wallets(ctx, "u1")
	if len(wallets) != 1 || wallets[0].Name != "Cash" {
		t.Errorf("wallets = %v", wallets)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	date, _ := core.ParseDate("2026-05-01")
	tx := core.Transaction{
		Date: date, Type: core.Expense, Account: "Food", Wallet: "Cash",
		Description: "Nasi goreng", Amount: decimal.RequireFromString("20000"),
		Timestamp: date.EpochMillis(),
	}
	saved, err := s.AppendTransaction(ctx, "u1", tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("no id assigned")
	}

	got, err := s.TransactionByID(ctx, "u1", saved.ID)
	if err != nil || got.Description != "Nasi goreng" {
		t.Fatalf("got %+v, err %v", got, err)
	}
	if _, err := s.TransactionByID(ctx, "u2", saved.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("cross-user lookup: err = %v", err)
	}

	if err := s.DeleteTransaction(ctx, "u1", saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", saved.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
	txs, _ := s.Transactions(ctx, "u1")
	if len(txs) != 0 {
		t.Errorf("txs = %v", txs)
	}
}

func TestAccountRemoveAll(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.AddAccount(ctx, "u1", core.Income, "Gig"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := s.RemoveAccount(ctx, "u1", core.Income, "Gig"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	accounts, _ := s.Accounts(ctx, "u1")
	if accounts.Contains(core.Income, "Gig") {
		t.Errorf("Gig still present: %v", accounts.Income)
	}
}

func TestProfileAndAccentColor(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Profile(ctx, "u1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("missing profile: err = %v", err)
	}
	if err := s.SaveProfile(ctx, "u1", core.Profile{DisplayName: "Budi"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err := s.Profile(ctx, "u1")
	if err != nil || p.DisplayName != "Budi" {
		t.Errorf("profile = %+v, err = %v", p, err)
	}

	hex, _ := s.AccentColor(ctx, "u1")
	if hex != "#4a90d9" {
		t.Errorf("default accent = %q", hex)
	}
	if err := s.SetAccentColor(ctx, "u1", "#123456"); err != nil {
		t.Fatalf("set accent: %v", err)
	}
	if hex, _ = s.AccentColor(ctx, "u1"); hex != "#123456" {
		t.Errorf("accent = %q", hex)
	}
}
