package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/marmos91/sfmp/pkg/session"
)

// SessionHandler exposes the live SFMP sessions read-only.
type SessionHandler struct {
	registry *session.Registry
}

// NewSessionHandler creates a session handler over registry.
func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// List handles GET /api/v1/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, okResponse(h.registry.Snapshot()))
}

// Get handles GET /api/v1/sessions/{addr}. addr is the client's
// "host:port", URL-escaped.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	addr, err := url.PathUnescape(chi.URLParam(r, "addr"))
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", "invalid session address")
		return
	}

	s, ok := h.registry.Get(addr)
	if !ok {
		NotFound(w, "no session for "+addr)
		return
	}
	WriteJSON(w, http.StatusOK, okResponse(s.Info()))
}
