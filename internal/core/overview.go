package core

import "github.com/shopspring/decimal"

// AccountAmount is an amount aggregated by account name.
type AccountAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Overview summarizes a user's ledger: totals per type, the running
// net, and the expense breakdown by account.
type Overview struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	ByAccount    []AccountAmount
}

// ComputeOverview aggregates the transaction list. ByAccount covers
// expenses only, in order of first appearance.
func ComputeOverview(txs []Transaction) Overview {
	ov := Overview{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Net:          decimal.Zero,
	}
	index := make(map[string]int)
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			ov.TotalIncome = ov.TotalIncome.Add(tx.Amount)
		case Expense:
			ov.TotalExpense = ov.TotalExpense.Add(tx.Amount)
			if i, ok := index[tx.Account]; ok {
				ov.ByAccount[i].Amount = ov.ByAccount[i].Amount.Add(tx.Amount)
			} else {
				index[tx.Account] = len(ov.ByAccount)
				ov.ByAccount = append(ov.ByAccount, AccountAmount{Name: tx.Account, Amount: tx.Amount})
			}
		}
	}
	ov.Net = ov.TotalIncome.Sub(ov.TotalExpense)
	return ov
}

// WalletActivity returns the net transaction flow per wallet name
// (income added, expenses subtracted). This is display-side context
// only; stored wallet balances are maintained independently and never
// reconciled against it.
func WalletActivity(txs []Transaction) map[string]decimal.Decimal {
	activity := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		cur, ok := activity[tx.Wallet]
		if !ok {
			cur = decimal.Zero
		}
		if tx.Type == Income {
			activity[tx.Wallet] = cur.Add(tx.Amount)
		} else {
			activity[tx.Wallet] = cur.Sub(tx.Amount)
		}
	}
	return activity
}
