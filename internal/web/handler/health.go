package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      Pinger
	redis   Pinger // nil when sessions are in-memory
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db, redis Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		version: version,
	}
}

type healthData struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database bool   `json:"database"`
	Redis    *bool  `json:"redis,omitempty"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := healthData{
		Status:  "healthy",
		Version: h.version,
	}

	if err := h.db.Ping(r.Context()); err == nil {
		data.Database = true
	} else {
		data.Status = "degraded"
	}

	if h.redis != nil {
		ok := h.redis.Ping(r.Context()) == nil
		data.Redis = &ok
		if !ok {
			data.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if data.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}
