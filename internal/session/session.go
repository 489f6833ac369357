package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a token does not resolve to a stored
// session.
var ErrSessionNotFound = errors.New("session not found")

// Session is the minimal identity claim kept server-side for a logged-in
// user. The token is delivered to the browser as a signed cookie; everything
// else stays in the store.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions keyed by token. Expiry enforcement belongs to the
// store where the backend supports it (Redis TTL); Manager re-checks on
// resolve either way.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Find(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
