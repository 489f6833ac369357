package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/secretwall/secretwall/internal/session"
)

const sessionKey contextKey = "session"

// Identity is middleware that resolves the session cookie to a stored
// identity and attaches it to the request context. Requests without a valid
// session proceed as anonymous; a session-store failure is logged and also
// treated as anonymous so the page still renders.
func Identity(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Resolve(r.Context(), r)
			if err != nil {
				slog.Error("failed to resolve session", "error", err, "requestId", GetRequestID(r.Context()))
			}

			if sess != nil {
				ctx := context.WithValue(r.Context(), sessionKey, sess)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSession retrieves the authenticated session from the request context.
// Returns nil for anonymous requests.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}
