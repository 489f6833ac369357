package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and by deployments that
// run without Redis. Expired sessions are dropped lazily on lookup.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Save stores the session under its token.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = *sess
	return nil
}

// Find resolves a token to its session, dropping it when expired.
func (s *MemoryStore) Find(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if sess.Expired(time.Now()) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}

// Delete removes the session for the given token. Deleting an unknown token
// is not an error.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
