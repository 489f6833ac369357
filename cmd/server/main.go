package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/config"
	"github.com/secretwall/secretwall/internal/session"
	"github.com/secretwall/secretwall/internal/user"
	"github.com/secretwall/secretwall/internal/web"
	"github.com/secretwall/secretwall/internal/web/handler"
	"github.com/secretwall/secretwall/internal/web/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	users := user.NewRepository(pool)

	sessionStore, redisClient, err := initSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessions := session.NewManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	authService := auth.NewService(users, cfg.BcryptCost)

	var google *auth.GoogleBroker
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google = auth.NewGoogleBroker(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/secrets",
		}, users)
	} else {
		slog.Warn("google credentials not configured; federated login disabled")
	}

	renderer, err := view.New()
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	var redisPing handler.Pinger
	if redisClient != nil {
		redisPing = redisPinger{client: redisClient}
	}

	router := web.NewRouter(web.RouterDeps{
		Users:    users,
		Auth:     authService,
		Google:   google,
		Sessions: sessions,
		Renderer: renderer,
		DB:       pool,
		Redis:    redisPing,
		Version:  cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting secretwall server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// initSessionStore picks the session backend: Redis when configured, the
// in-process store otherwise.
func initSessionStore(ctx context.Context, cfg *config.Config) (session.Store, *redis.Client, error) {
	if cfg.RedisURL == "" {
		slog.Info("no redis configured; using in-memory session store")
		return session.NewMemoryStore(), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("pinging redis: %w", err)
	}

	return session.NewRedisStore(client), client, nil
}

// redisPinger adapts the go-redis client to the health handler's Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
