// Package auth owns user identities and cookie sessions: sign-up,
// sign-in, sign-out, session resolution and password changes. It
// plays the role the hosted identity provider played for the original
// client, with coded errors the UI maps to friendly text.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// Sentinel errors returned by Store implementations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
)

// User is the identity record. The password hash never leaves the
// store.
type User struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
}

// Session is a persisted login session addressed by an opaque token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Store is the persistence port the manager writes identities and
// sessions through.
type Store interface {
	CreateUser(ctx context.Context, u User, passwordHash string) error
	UserByEmail(ctx context.Context, email string) (User, string, error)
	UserByID(ctx context.Context, id string) (User, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	UpdateUserDisplayName(ctx context.Context, userID, displayName string) error

	CreateSession(ctx context.Context, s Session) error
	SessionByToken(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Manager wraps a Store with credential checks and session lifecycle.
type Manager struct {
	store      Store
	sessionTTL time.Duration
	bcryptCost int
}

func NewManager(store Store, sessionTTL time.Duration) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &Manager{
		store:      store,
		sessionTTL: sessionTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// SignUp registers a new user and opens a session for it.
func (m *Manager) SignUp(ctx context.Context, email, password string) (User, Session, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || len(email) < 3 {
		return User{}, Session{}, newError(CodeInvalidEmail, "invalid email address")
	}
	if len(password) < MinPasswordLength {
		return User{}, Session{}, newError(CodeWeakPassword, "password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return User{}, Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.CreateUser(ctx, u, string(hash)); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, Session{}, newError(CodeEmailInUse, "email already in use")
		}
		return User{}, Session{}, fmt.Errorf("create user: %w", err)
	}

	sess, err := m.openSession(ctx, u.ID)
	if err != nil {
		return User{}, Session{}, err
	}

	slog.InfoContext(ctx, "User signed up", "user_id", u.ID)
	return u, sess, nil
}

// SignIn verifies credentials and opens a session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (User, Session, error) {
	u, hash, err := m.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, Session{}, newError(CodeUserNotFound, "user not found")
		}
		return User{}, Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, Session{}, newError(CodeWrongPassword, "wrong password")
	}

	sess, err := m.openSession(ctx, u.ID)
	if err != nil {
		return User{}, Session{}, err
	}

	slog.InfoContext(ctx, "User signed in", "user_id", u.ID)
	return u, sess, nil
}

// SignOut destroys the session. Unknown tokens are not an error.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	if err := m.store.DeleteSession(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserFromSession resolves a session token to its user. Expired
// sessions are treated as absent.
func (m *Manager) UserFromSession(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrSessionNotFound
	}
	sess, err := m.store.SessionByToken(ctx, token)
	if err != nil {
		return User{}, err
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = m.store.DeleteSession(ctx, token)
		return User{}, ErrSessionNotFound
	}
	return m.store.UserByID(ctx, sess.UserID)
}

// UpdatePassword changes a user's password after re-authenticating
// with the current one.
func (m *Manager) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return newError(CodeWeakPassword, "password too short")
	}
	u, err := m.store.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	_, hash, err := m.store.UserByEmail(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("lookup credentials: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return newError(CodeWrongPassword, "wrong password")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), m.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := m.store.UpdateUserPassword(ctx, userID, string(newHash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	slog.InfoContext(ctx, "Password updated", "user_id", userID)
	return nil
}

// UpdateDisplayName sets the user's display name on the identity
// record.
func (m *Manager) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	if err := m.store.UpdateUserDisplayName(ctx, userID, strings.TrimSpace(displayName)); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}

func (m *Manager) openSession(ctx context.Context, userID string) (Session, error) {
	sess := Session{
		Token:     newToken(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.sessionTTL),
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in bad shape; a
		// uuid still gives an unguessable-enough fallback token.
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
