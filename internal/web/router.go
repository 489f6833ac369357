package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/session"
	"github.com/secretwall/secretwall/internal/user"
	"github.com/secretwall/secretwall/internal/web/handler"
	"github.com/secretwall/secretwall/internal/web/middleware"
	"github.com/secretwall/secretwall/internal/web/view"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Users    user.Repository
	Auth     *auth.Service
	Google   *auth.GoogleBroker
	Sessions *session.Manager
	Renderer *view.Renderer
	DB       handler.Pinger
	Redis    handler.Pinger // nil when sessions are in-memory
	Version  string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Identity(deps.Sessions))

	pages := handler.NewPageHandler(deps.Users, deps.Renderer)
	local := handler.NewLocalAuthHandler(deps.Auth, deps.Sessions)
	secret := handler.NewSecretHandler(deps.Users)

	r.Get("/", pages.Home)
	r.Get("/secrets", pages.Secrets)
	r.Get("/submit", pages.SubmitForm)
	r.Get("/register", pages.RegisterForm)
	r.Get("/login", pages.LoginForm)
	r.Get("/logout", local.Logout)
	r.Post("/register", local.Register)
	r.Post("/login", local.Login)
	r.Post("/submit", secret.Submit)

	if deps.Google != nil {
		google := handler.NewGoogleHandler(deps.Google, deps.Sessions)
		r.Get("/auth/google", google.Login)
		r.Get("/auth/google/secrets", google.Callback)
	}

	if deps.DB != nil {
		health := handler.NewHealthHandler(deps.DB, deps.Redis, deps.Version)
		r.Get("/health", health.ServeHTTP)
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))

	return r
}
