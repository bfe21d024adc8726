package handlers

import (
	"context"
	"net/http"

	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

// SessionLinker claims anonymous searches for a signed-in user
type SessionLinker interface {
	OnAuthenticated(ctx context.Context, caller entities.Caller) (int64, error)
}

// SessionHandler exposes the login hook over HTTP
type SessionHandler struct {
	linker SessionLinker
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(linker SessionLinker) *SessionHandler {
	return &SessionHandler{linker: linker}
}

// LinkSession handles POST /api/auth/session/link. The session cookie of the
// request is attached to the authenticated user.
func (h *SessionHandler) LinkSession(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	linked, err := h.linker.OnAuthenticated(r.Context(), caller)
	if err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, "Anonymous searches linked successfully", map[string]int64{
		"linked": linked,
	})
}
