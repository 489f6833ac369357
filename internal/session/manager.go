package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the browser cookie carrying the signed session token.
const CookieName = "secretwall_session"

// Manager turns a successful authentication into a signed session cookie and
// resolves incoming cookies back to an identity. A request whose cookie is
// missing, tampered with, unknown or expired is anonymous, never an error.
type Manager struct {
	store  Store
	signer *Signer
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager over the given store. The secret keys cookie
// signing; secure controls the cookie's Secure attribute.
func NewManager(store Store, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		signer: NewSigner(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Signer exposes the cookie signer for other signed, short-lived cookies
// (the OAuth state cookie rides on the same key).
func (m *Manager) Signer() *Signer {
	return m.signer
}

// Create establishes a session for the given identity and sets the cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, userID uuid.UUID, username string) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	now := time.Now().UTC()
	sess := &Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.signer.Sign(token),
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Resolve reads the session cookie from the request and resolves it to the
// stored identity. A nil session with a nil error means anonymous; a non-nil
// error means the store itself failed.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}

	token, ok := m.signer.Verify(cookie.Value)
	if !ok {
		return nil, nil
	}

	sess, err := m.store.Find(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	if sess.Expired(time.Now()) {
		return nil, nil
	}

	return sess, nil
}

// Destroy deletes the stored session referenced by the request's cookie and
// expires the cookie. Destroying an anonymous request is a no-op.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	token, ok := m.signer.Verify(cookie.Value)
	if !ok {
		return nil
	}

	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}
