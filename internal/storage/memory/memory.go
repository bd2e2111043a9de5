// Package memory is an in-memory implementation of the auth and
// ledger stores. It backs tests and the DATA_BACKEND=memory mode,
// where all data is lost on restart.
package memory

import (
	"context"
	"sync"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	defaultIncomeAccounts  = []string{"Salary", "Bonus"}
	defaultExpenseAccounts = []string{"Food", "Transport", "Shopping", "Bills"}
	defaultWalletName      = "Cash"
	defaultAccentColor     = "#4a90d9"
)

type userRecord struct {
	user auth.User
	hash string
}

type userData struct {
	accounts     core.AccountSet
	wallets      []core.Wallet
	transactions []core.Transaction
	profile      core.Profile
	hasProfile   bool
	accentColor  string
}

// Store keeps everything behind one mutex. Slices preserve insertion
// order, matching what the SQLite store returns.
type Store struct {
	mu       sync.Mutex
	users    map[string]*userRecord // by user id
	byEmail  map[string]string      // email -> user id
	sessions map[string]auth.Session
	data     map[string]*userData // by user id
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*userRecord),
		byEmail:  make(map[string]string),
		sessions: make(map[string]auth.Session),
		data:     make(map[string]*userData),
	}
}

// --- auth.Store ---

func (s *Store) CreateUser(ctx context.Context, u auth.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return auth.ErrEmailTaken
	}
	s.users[u.ID] = &userRecord{user: u, hash: passwordHash}
	s.byEmail[u.Email] = u.ID
	s.data[u.ID] = &userData{
		accounts: core.AccountSet{
			Income:  append([]string(nil), defaultIncomeAccounts...),
			Expense: append([]string(nil), defaultExpenseAccounts...),
		},
		wallets: []core.Wallet{
			{ID: uuid.NewString(), Name: defaultWalletName, Balance: decimal.Zero},
		},
		profile:     core.Profile{DisplayName: u.DisplayName, Email: u.Email},
		hasProfile:  true,
		accentColor: defaultAccentColor,
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (auth.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return auth.User{}, "", auth.ErrUserNotFound
	}
	rec := s.users[id]
	return rec.user, rec.hash, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return rec.user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	rec.hash = passwordHash
	return nil
}

func (s *Store) UpdateUserDisplayName(ctx context.Context, userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	rec.user.DisplayName = displayName
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) SessionByToken(ctx context.Context, token string) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// --- ledger.Store ---

func (s *Store) Accounts(ctx context.Context, userID string) (core.AccountSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	return core.AccountSet{
		Income:  append([]string(nil), d.accounts.Income...),
		Expense: append([]string(nil), d.accounts.Expense...),
	}, nil
}

func (s *Store) AddAccount(ctx context.Context, userID string, t core.TransactionType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	switch t {
	case core.Income:
		d.accounts.Income = append(d.accounts.Income, name)
	case core.Expense:
		d.accounts.Expense = append(d.accounts.Expense, name)
	}
	return nil
}

func (s *Store) RemoveAccount(ctx context.Context, userID string, t core.TransactionType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	switch t {
	case core.Income:
		d.accounts.Income = removeAll(d.accounts.Income, name)
	case core.Expense:
		d.accounts.Expense = removeAll(d.accounts.Expense, name)
	}
	return nil
}

func (s *Store) Wallets(ctx context.Context, userID string) ([]core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Wallet(nil), s.userData(userID).wallets...), nil
}

func (s *Store) CreateWallet(ctx context.Context, userID, name string) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := core.Wallet{ID: uuid.NewString(), Name: name, Balance: decimal.Zero}
	d := s.userData(userID)
	d.wallets = append(d.wallets, w)
	return w, nil
}

func (s *Store) DeleteWallet(ctx context.Context, userID, walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	kept := d.wallets[:0]
	for _, w := range d.wallets {
		if w.ID != walletID {
			kept = append(kept, w)
		}
	}
	d.wallets = kept
	return nil
}

func (s *Store) Transactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.userData(userID).transactions...), nil
}

func (s *Store) TransactionByID(ctx context.Context, userID, txID string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.userData(userID).transactions {
		if tx.ID == txID {
			return tx, nil
		}
	}
	return core.Transaction{}, ledger.ErrNotFound
}

func (s *Store) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.NewString()
	d := s.userData(userID)
	d.transactions = append(d.transactions, tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	kept := d.transactions[:0]
	for _, tx := range d.transactions {
		if tx.ID != txID {
			kept = append(kept, tx)
		}
	}
	d.transactions = kept
	return nil
}

func (s *Store) Profile(ctx context.Context, userID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	if !d.hasProfile {
		return core.Profile{}, ledger.ErrNotFound
	}
	return d.profile, nil
}

func (s *Store) SaveProfile(ctx context.Context, userID string, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	d.profile = p
	d.hasProfile = true
	return nil
}

func (s *Store) AccentColor(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.userData(userID)
	if d.accentColor == "" {
		return defaultAccentColor, nil
	}
	return d.accentColor, nil
}

func (s *Store) SetAccentColor(ctx context.Context, userID, hex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userData(userID).accentColor = hex
	return nil
}

// userData lazily creates the per-user bucket so the in-memory store
// works even for ids that never went through CreateUser. Callers must
// hold the mutex.
func (s *Store) userData(userID string) *userData {
	d, ok := s.data[userID]
	if !ok {
		d = &userData{accentColor: defaultAccentColor}
		s.data[userID] = d
	}
	return d
}

func removeAll(names []string, name string) []string {
	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	return kept
}
