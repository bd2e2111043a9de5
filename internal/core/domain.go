package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry. The ID is an opaque key
	// assigned by the store on append; entries are never updated in
	// place.
	Transaction struct {
		ID          string
		Date        Date
		Type        TransactionType
		Account     string
		Wallet      string
		Description string
		Amount      decimal.Decimal
		Timestamp   int64 // epoch milliseconds, derived from Date
	}

	// Wallet is a named money pocket. Balance is maintained
	// independently of the transaction list and is not reconciled
	// against it.
	Wallet struct {
		ID      string
		Name    string
		Balance decimal.Decimal
	}

	// AccountSet holds the per-user reference lists of account names,
	// one sequence per transaction type. Order is insertion order and
	// duplicates are allowed.
	AccountSet struct {
		Income  []string
		Expense []string
	}

	// Profile is the per-user profile record, overwritten wholesale on
	// each save.
	Profile struct {
		DisplayName string
		FirstName   string
		LastName    string
		Email       string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyAccount     = errors.New("empty account")
	ErrEmptyWallet      = errors.New("empty wallet")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date string (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// EpochMillis returns the date as epoch milliseconds.
func (d Date) EpochMillis() int64 {
	return d.UnixMilli()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// Sign returns "+" for income and "-" for expense.
func (t TransactionType) Sign() string {
	if t == Income {
		return "+"
	}
	return "-"
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Account) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(tx.Wallet) == "" {
		return ErrEmptyWallet
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	if len(w.Name) > 100 {
		return errors.New("wallet name too long (max 100 characters)")
	}
	return nil
}

// Names returns the account names configured for the given type.
func (s AccountSet) Names(t TransactionType) []string {
	if t == Income {
		return s.Income
	}
	return s.Expense
}

// Contains reports whether name appears in the list for the given type.
func (s AccountSet) Contains(t TransactionType, name string) bool {
	for _, n := range s.Names(t) {
		if n == name {
			return true
		}
	}
	return false
}

// SplitDisplayName splits a display name on the first whitespace run:
// first token becomes the first name, the remainder the last name.
// Lossy for multi-word surnames.
func SplitDisplayName(displayName string) (first, last string) {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// EffectiveDisplayName returns the explicit display name, or
// "{first} {last}" when it is blank.
func (p Profile) EffectiveDisplayName() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}
