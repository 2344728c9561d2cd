// Package services contains application services for the NotesKeeper client.
// This file defines the authentication service: register, login and logout,
// and the in-memory session they produce.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/settings"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/cryptox"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
)

// AccountStore is the persistence the auth service needs.
type AccountStore interface {
	// Add fails with common.ErrUsernameTaken for an existing username.
	Add(ctx context.Context, a *models.Account) error
	// Find fails with common.ErrNotFound for an unknown username.
	Find(ctx context.Context, username string) (*models.Account, error)
}

// AuthService moves the client between the logged-out and logged-in states.
//
// Contract:
//   - Register: create an account and log it in.
//   - Login: verify the password and derive the session key.
//   - Logout: wipe the session key. Idempotent.
//   - Session: the active session, or nil.
//
// Entering the logged-in state destroys any previous session first. A failed
// Register or Login leaves the current state untouched.
type AuthService struct {
	store AccountStore
	prefs settings.Repository
	log   logging.Logger

	rand       io.Reader
	now        func() time.Time
	iterations int

	mu      sync.Mutex
	session *Session
}

// NewAuthService wires the service. prefs may be nil, in which case the last
// username is not remembered.
func NewAuthService(store AccountStore, prefs settings.Repository, log logging.Logger) *AuthService {
	return &AuthService{
		store:      store,
		prefs:      prefs,
		log:        log.With("component", "auth"),
		now:        time.Now,
		iterations: cryptox.DefaultIterations,
	}
}

// Register creates an account with a fresh random salt and logs it in.
func (a *AuthService) Register(ctx context.Context, username string, password []byte) (*Session, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	salt, err := cryptox.RandomBytes(a.rand, cryptox.SaltSize)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	account := &models.Account{
		Username:     username,
		Salt:         salt,
		PasswordHash: cryptox.HashPassword(password, salt),
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.Add(ctx, account); err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s, err := a.openSession(ctx, account, password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	a.log.Info(ctx, "user registered", "user", username)
	return s, nil
}

// Login checks the password against the stored digest and, on success,
// derives the same key Register produced.
func (a *AuthService) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	account, err := a.store.Find(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.log.Warn(ctx, "login failed", "user", username, "reason", "unknown user")
			return nil, common.ErrNoSuchUser
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !cryptox.VerifyPassword(password, account.Salt, account.PasswordHash) {
		a.log.Warn(ctx, "login failed", "user", username, "reason", "wrong password")
		return nil, common.ErrIncorrectPassword
	}

	s, err := a.openSession(ctx, account, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	a.log.Info(ctx, "user logged in", "user", username)
	return s, nil
}

// Logout destroys the active session, if any.
func (a *AuthService) Logout(ctx context.Context) {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()

	if s != nil {
		s.Destroy()
		a.log.Info(ctx, "user logged out", "user", s.Username())
	}
}

// Session returns the active session or nil.
func (a *AuthService) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// LastUsername returns the username of the most recent successful login or
// registration, or "" if none is remembered.
func (a *AuthService) LastUsername(ctx context.Context) string {
	if a.prefs == nil {
		return ""
	}
	name, err := settings.GetString(ctx, a.prefs, settings.KeyLastUsername, "")
	if err != nil {
		a.log.Warn(ctx, "failed to read last username", "error", err)
		return ""
	}
	return name
}

func (a *AuthService) openSession(ctx context.Context, account *models.Account, password []byte) (*Session, error) {
	key, err := cryptox.DeriveKey(password, account.Salt, a.iterations, cryptox.KeySize)
	if err != nil {
		return nil, err
	}
	s := NewSession(account.Username, key)

	a.mu.Lock()
	prev := a.session
	a.session = s
	a.mu.Unlock()

	prev.Destroy()

	if a.prefs != nil {
		if err := a.prefs.Set(ctx, settings.KeyLastUsername, []byte(account.Username)); err != nil {
			a.log.Warn(ctx, "failed to remember last username", "error", err)
		}
	}
	return s, nil
}

func validateCredentials(username string, password []byte) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is empty", common.ErrInvalidInput)
	}
	if len(bytes.TrimSpace(password)) == 0 {
		return "", fmt.Errorf("%w: password is empty", common.ErrInvalidInput)
	}
	return username, nil
}
