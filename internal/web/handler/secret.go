package handler

import (
	"log/slog"
	"net/http"

	"github.com/secretwall/secretwall/internal/user"
	"github.com/secretwall/secretwall/internal/web/middleware"
)

// SecretHandler handles secret submission.
type SecretHandler struct {
	users user.Repository
}

// NewSecretHandler creates a new SecretHandler.
func NewSecretHandler(users user.Repository) *SecretHandler {
	return &SecretHandler{users: users}
}

// Submit handles POST /submit. The authenticated user's secret is
// overwritten; concurrent submissions by the same user are last-write-wins.
// Anonymous requests never reach the write path.
func (h *SecretHandler) Submit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	sess := middleware.GetSession(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/submit", http.StatusFound)
		return
	}
	secret := r.PostFormValue("secret")

	// Load the record first so a stale session (user vanished) is treated as
	// a failure rather than inserting an orphan write.
	u, err := h.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("failed to load user for submission", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/submit", http.StatusFound)
		return
	}

	if err := h.users.UpdateSecret(r.Context(), u.ID, secret); err != nil {
		slog.Error("failed to store secret", "error", err, "requestId", requestID)
		http.Redirect(w, r, "/submit", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}
