package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/session"
	"github.com/secretwall/secretwall/internal/web/middleware"
	"github.com/secretwall/secretwall/internal/web/validation"
)

// LocalAuthHandler handles local registration, login and logout. Failures
// never surface details to the client; the browser is redirected back to the
// originating form.
type LocalAuthHandler struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewLocalAuthHandler creates a new LocalAuthHandler.
func NewLocalAuthHandler(authService *auth.Service, sessions *session.Manager) *LocalAuthHandler {
	return &LocalAuthHandler{
		auth:     authService,
		sessions: sessions,
	}
}

// Register handles POST /register.
func (h *LocalAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	username, password, ok := credentialsForm(r)
	if !ok {
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	u, err := h.auth.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			slog.Info("registration rejected, username taken", "username", username, "requestId", requestID)
		} else {
			slog.Error("failed to register user", "error", err, "requestId", requestID)
		}
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	if _, err := h.sessions.Create(r.Context(), w, u.ID, u.Username); err != nil {
		slog.Error("failed to create session", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}

// Login handles POST /login.
func (h *LocalAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	username, password, ok := credentialsForm(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	u, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Info("login rejected", "username", username, "requestId", requestID)
		} else {
			slog.Error("failed to verify credentials", "error", err, "requestId", requestID)
		}
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

// Logout handles GET /logout.
func (h *LocalAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("failed to destroy session", "error", err, "requestId", middleware.GetRequestID(r.Context()))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// credentialsForm parses and validates the username/password form shared by
// register and login.
func credentialsForm(r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}

	form := validation.CredentialsForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if len(validation.ValidateCredentialsForm(form)) > 0 {
		return "", "", false
	}

	return strings.TrimSpace(form.Username), form.Password, true
}
