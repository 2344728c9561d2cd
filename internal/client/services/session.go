package services

import (
	"sync"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
)

// Session is an authenticated user together with the key derived from their
// password. The key lives in a memguard.LockedBuffer (mlocked, guard pages)
// and is wiped by Destroy. A destroyed session is rejected by every service
// with common.ErrNotLoggedIn.
type Session struct {
	mu       sync.RWMutex
	username string
	key      *memguard.LockedBuffer
}

// NewSession moves key into locked memory; the caller's slice is wiped.
func NewSession(username string, key []byte) *Session {
	return &Session{
		username: username,
		key:      memguard.NewBufferFromBytes(key),
	}
}

func (s *Session) Username() string {
	return s.username
}

// Active reports whether the session still holds its key.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil && s.key.IsAlive()
}

// WithKey calls fn with the session key. The slice is only valid for the
// duration of the call and must not be retained or modified.
func (s *Session) WithKey(fn func(key []byte) error) error {
	if s == nil {
		return common.ErrNotLoggedIn
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil || !s.key.IsAlive() {
		return common.ErrNotLoggedIn
	}
	return fn(s.key.Bytes())
}

// Destroy wipes the key. Calling it more than once is harmless.
func (s *Session) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.Destroy()
		s.key = nil
	}
}

// owns reports whether the session is active and belongs to owner.
func (s *Session) owns(owner string) bool {
	return s.Active() && s.username == owner
}

func requireSession(s *Session) error {
	if !s.Active() {
		return common.ErrNotLoggedIn
	}
	return nil
}
