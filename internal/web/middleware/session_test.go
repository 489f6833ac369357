package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretwall/secretwall/internal/session"
	"github.com/secretwall/secretwall/internal/web/middleware"
)

func identityProbe(t *testing.T, mgr *session.Manager, cookie *http.Cookie) *session.Session {
	t.Helper()

	var got *session.Session
	h := middleware.Identity(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	return got
}

func TestIdentity_AttachesSession(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	_, err := mgr.Create(context.Background(), rec, uuid.New(), "alice")
	require.NoError(t, err)
	cookie := rec.Result().Cookies()[0]

	got := identityProbe(t, mgr, cookie)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestIdentity_AnonymousWithoutCookie(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour, false)

	got := identityProbe(t, mgr, nil)
	assert.Nil(t, got)
}

func TestIdentity_AnonymousWithForgedCookie(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour, false)

	forged := &http.Cookie{Name: session.CookieName, Value: "forged-token.bad-signature"}
	got := identityProbe(t, mgr, forged)
	assert.Nil(t, got)
}
