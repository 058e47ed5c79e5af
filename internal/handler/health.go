package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connection reports whether a messaging connection is up.
type Connection interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db   Pinger
	nats Connection
}

// NewHealthHandler creates a new health handler. nats may be nil when
// messaging is disabled.
func NewHealthHandler(db Pinger, nats Connection) *HealthHandler {
	return &HealthHandler{
		db:   db,
		nats: nats,
	}
}

// Welcome handles GET /
func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the AirbnbLite API",
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	if h.nats != nil && !h.nats.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
