package middleware

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore resolves session tokens to user ids.
type SessionStore interface {
	Create(userID int) string
	Lookup(token string) (int, bool)
	Revoke(token string)
}

// MemorySessionStore keeps sessions in process memory; good enough for the
// dev backend, where restarts are expected to log everyone out.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]int
}

// NewMemorySessionStore constructs an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]int)}
}

// Create issues a fresh token for userID.
func (s *MemorySessionStore) Create(userID int) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = userID
	s.mu.Unlock()
	return token
}

// Lookup resolves a token.
func (s *MemorySessionStore) Lookup(token string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[token]
	return userID, ok
}

// Revoke invalidates a token.
func (s *MemorySessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
