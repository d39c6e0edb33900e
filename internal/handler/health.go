package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a dependency the readiness check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check endpoints
type HealthHandler struct {
	database Pinger
	redis    Pinger
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler. redis may be nil when
// sessions are kept in memory.
func NewHealthHandler(database, redis Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		database: database,
		redis:    redis,
		logger:   logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz, a liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz and answers 200 only if every configured dependency responds
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := probe(ctx, checks, "database", h.database)
	if h.redis != nil {
		healthy = probe(ctx, checks, "redis", h.redis) && healthy
	} else {
		checks["redis"] = "not configured"
	}

	status, code := "ready", http.StatusOK
	if !healthy {
		status, code = "not_ready", http.StatusServiceUnavailable
		h.logger.Warn("readiness check failed",
			slog.String("database", checks["database"]),
			slog.String("redis", checks["redis"]),
		)
	}
	writeJSON(w, code, ReadinessResponse{Status: status, Checks: checks})
}

func probe(ctx context.Context, checks map[string]string, name string, p Pinger) bool {
	if p == nil {
		checks[name] = "not configured"
		return false
	}
	if err := p.Ping(ctx); err != nil {
		checks[name] = "error: " + err.Error()
		return false
	}
	checks[name] = "ok"
	return true
}
