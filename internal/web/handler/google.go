package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/session"
	"github.com/secretwall/secretwall/internal/web/middleware"
)

// stateCookieName carries the signed anti-forgery state between the two legs
// of the OAuth handshake.
const stateCookieName = "secretwall_oauth_state"

// stateCookieMaxAge bounds how long a pending handshake stays valid.
const stateCookieMaxAge = 600

// GoogleHandler handles the two legs of the federated login flow.
type GoogleHandler struct {
	broker   *auth.GoogleBroker
	sessions *session.Manager
}

// NewGoogleHandler creates a new GoogleHandler.
func NewGoogleHandler(broker *auth.GoogleBroker, sessions *session.Manager) *GoogleHandler {
	return &GoogleHandler{
		broker:   broker,
		sessions: sessions,
	}
}

// Login handles GET /auth/google: issues the anti-forgery state and sends
// the browser to the provider's authorization endpoint.
func (h *GoogleHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := session.NewToken()
	if err != nil {
		slog.Error("failed to generate oauth state", "error", err, "requestId", middleware.GetRequestID(r.Context()))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    h.sessions.Signer().Sign(state),
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.broker.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/google/secrets: validates the state, exchanges
// the code, maps the asserted profile to a local user and establishes a
// session. Any failure returns the visitor to the login page.
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	// The state cookie is single-use regardless of outcome.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		slog.Info("oauth callback without state cookie", "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	wantState, ok := h.sessions.Signer().Verify(cookie.Value)
	if !ok {
		slog.Info("oauth callback with tampered state cookie", "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	gotState := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(wantState), []byte(gotState)) != 1 {
		slog.Info("oauth callback state mismatch", "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Info("oauth callback without authorization code", "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token, err := h.broker.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("failed to exchange authorization code", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	profile, err := h.broker.FetchProfile(r.Context(), token)
	if err != nil {
		slog.Error("failed to fetch federated profile", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	u, err := h.broker.FindOrCreate(r.Context(), profile)
	if err != nil {
		slog.Error("failed to map federated identity", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if _, err := h.sessions.Create(r.Context(), w, u.ID, u.Username); err != nil {
		slog.Error("failed to create session", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}
