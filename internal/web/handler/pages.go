package handler

import (
	"log/slog"
	"net/http"

	"github.com/secretwall/secretwall/internal/user"
	"github.com/secretwall/secretwall/internal/web/middleware"
	"github.com/secretwall/secretwall/internal/web/view"
)

// PageHandler renders the site's pages: the landing page, the secrets wall
// and the forms.
type PageHandler struct {
	users    user.Repository
	renderer *view.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(users user.Repository, renderer *view.Renderer) *PageHandler {
	return &PageHandler{
		users:    users,
		renderer: renderer,
	}
}

type secretsPage struct {
	view.Base
	Secrets []string
}

// Home handles GET /.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.renderer, "home", base(r))
}

// Secrets handles GET /secrets. The wall is public: every visitor sees every
// posted secret, authenticated or not.
func (h *PageHandler) Secrets(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListWithSecrets(r.Context())
	if err != nil {
		slog.Error("failed to list secrets", "error", err, "requestId", middleware.GetRequestID(r.Context()))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	page := secretsPage{Base: base(r)}
	for _, u := range users {
		page.Secrets = append(page.Secrets, *u.Secret)
	}

	render(w, r, h.renderer, "secrets", page)
}

// SubmitForm handles GET /submit. Anonymous visitors are sent home.
func (h *PageHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()) == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	render(w, r, h.renderer, "submit", base(r))
}

// RegisterForm handles GET /register.
func (h *PageHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.renderer, "register", base(r))
}

// LoginForm handles GET /login.
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.renderer, "login", base(r))
}

// base builds the layout data from the request's resolved identity.
func base(r *http.Request) view.Base {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		return view.Base{Authed: true, Username: sess.Username}
	}
	return view.Base{}
}

// render executes a page template; a template failure is logged, the partial
// response is whatever made it out.
func render(w http.ResponseWriter, r *http.Request, renderer *view.Renderer, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w, page, data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err, "requestId", middleware.GetRequestID(r.Context()))
	}
}
