package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(t TransactionType, account, wallet, amount string) Transaction {
	return Transaction{
		Date:        NewDate(2026, 8, 1),
		Type:        t,
		Account:     account,
		Wallet:      wallet,
		Description: "x",
		Amount:      decimal.RequireFromString(amount),
	}
}

func TestComputeOverview(t *testing.T) {
	txs := []Transaction{
		tx(Income, "Salary", "Bank", "5000000"),
		tx(Expense, "Food", "Cash", "150000"),
		tx(Expense, "Transport", "Cash", "50000"),
		tx(Expense, "Food", "Bank", "100000"),
	}

	ov := ComputeOverview(txs)
	if ov.TotalIncome.String() != "5000000" {
		t.Errorf("TotalIncome = %s", ov.TotalIncome)
	}
	if ov.TotalExpense.String() != "300000" {
		t.Errorf("TotalExpense = %s", ov.TotalExpense)
	}
	if ov.Net.String() != "4700000" {
		t.Errorf("Net = %s", ov.Net)
	}

	if len(ov.ByAccount) != 2 {
		t.Fatalf("ByAccount = %v", ov.ByAccount)
	}
	if ov.ByAccount[0].Name != "Food" || ov.ByAccount[0].Amount.String() != "250000" {
		t.Errorf("Food aggregate = %+v", ov.ByAccount[0])
	}
	if ov.ByAccount[1].Name != "Transport" || ov.ByAccount[1].Amount.String() != "50000" {
		t.Errorf("Transport aggregate = %+v", ov.ByAccount[1])
	}
}

func TestComputeOverviewEmpty(t *testing.T) {
	ov := ComputeOverview(nil)
	if !ov.Net.IsZero() || !ov.TotalIncome.IsZero() || !ov.TotalExpense.IsZero() {
		t.Errorf("empty ledger should be all zero: %+v", ov)
	}
}

func TestWalletActivity(t *testing.T) {
	txs := []Transaction{
		tx(Income, "Salary", "Bank", "1000"),
		tx(Expense, "Food", "Bank", "400"),
		tx(Expense, "Food", "Cash", "100.5"),
	}
	activity := WalletActivity(txs)
	if activity["Bank"].String() != "600" {
		t.Errorf("Bank activity = %s", activity["Bank"])
	}
	if activity["Cash"].String() != "-100.5" {
		t.Errorf("Cash activity = %s", activity["Cash"])
	}
}
