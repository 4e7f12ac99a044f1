package handlers

import (
	"net/http"
	"time"
)

// Listener is the part of the SFMP adapter the health probes look at.
type Listener interface {
	// GetListenerAddr returns the bound address, or "" when not listening.
	GetListenerAddr() string

	// GetActiveConnections returns the number of connections being served.
	GetActiveConnections() int32
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the SFMP listener accepting connections?
type HealthHandler struct {
	listener  Listener
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
//
// listener may be nil, in which case the readiness probe reports unhealthy.
func NewHealthHandler(listener Listener) *HealthHandler {
	return &HealthHandler{listener: listener, startedAt: time.Now()}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt).Truncate(time.Second)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"service":    "sfmp",
		"started_at": h.startedAt.UTC().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK once the SFMP listener is bound, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.listener == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("server not initialized"))
		return
	}

	addr := h.listener.GetListenerAddr()
	if addr == "" {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("listener not bound"))
		return
	}

	WriteJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"address":     addr,
		"connections": h.listener.GetActiveConnections(),
	}))
}
