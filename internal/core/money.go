// Package core provides the ledger domain model and the pure helpers
// (money parsing and formatting, pagination, color math) shared by the
// HTTP layer and the export worker.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (10000.50) and comma (10000,50) decimal
// separators. Signed input is rejected: the transaction type carries
// the sign, amounts themselves are always positive. The parsed value
// is preserved exactly (100.5 stays 100.5).
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatRupiah formats an amount as "Rp " followed by the half-up
// rounded integer value, grouped with dots every three digits
// (id-ID style). Negative amounts carry a leading minus after "Rp ".
func FormatRupiah(d decimal.Decimal) string {
	neg := d.IsNegative()
	whole := d.Abs().Round(0).String()
	grouped := groupThousands(whole)
	if neg {
		return "Rp -" + grouped
	}
	return "Rp " + grouped
}

// FormatRupiahString formats a raw amount string, treating anything
// unparseable as zero. This mirrors the display contract: invalid or
// absent input renders as "Rp 0".
func FormatRupiahString(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "Rp 0"
	}
	return FormatRupiah(d)
}

// FormatSigned renders an amount with its type sign, e.g.
// "+Rp 50.000" for income and "-Rp 25.000" for expense.
func FormatSigned(t TransactionType, d decimal.Decimal) string {
	return t.Sign() + FormatRupiah(d)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
