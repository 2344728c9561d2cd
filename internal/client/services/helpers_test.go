package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/noteskeeper/internal/client/credentials"
	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/client/storage"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

type testEnv struct {
	store *storage.Store
	auth  *AuthService
	enc   *EncryptedNoteService
	notes *NoteService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := logging.Discard()
	env := &testEnv{
		store: st,
		auth:  NewAuthService(credentials.NewStore(st.DB), st.Repos.Settings, log),
		enc:   NewEncryptedNoteService(st.DB, log),
		notes: NewNoteService(st.Repos.Notes, log),
	}
	t.Cleanup(func() { env.auth.Logout(context.Background()) })
	return env
}

// register creates an account and returns its session; the session is
// destroyed when the test ends.
func (e *testEnv) register(t *testing.T, username, password string) *Session {
	t.Helper()
	s, err := e.auth.Register(context.Background(), username, []byte(password))
	require.NoError(t, err)
	t.Cleanup(s.Destroy)
	return s
}

func keyOf(t *testing.T, s *Session) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, s.WithKey(func(key []byte) error {
		out = append([]byte(nil), key...)
		return nil
	}))
	return out
}

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

// ---- fake account store ----

// memStore is an AccountStore kept in a map.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account

	addErr  error
	findErr error
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]models.Account)}
}

func (m *memStore) Add(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	if _, ok := m.accounts[a.Username]; ok {
		return common.ErrUsernameTaken
	}
	m.accounts[a.Username] = *a
	return nil
}

func (m *memStore) Find(_ context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	a, ok := m.accounts[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &a, nil
}
