package handlers

import (
	"context"
	"net/http"

	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

// TripPlanner is the trip planning operation used by TripHandler
type TripPlanner interface {
	PlanTrip(ctx context.Context, req services.PlanTripRequest, caller entities.Caller) (*entities.TripPlan, error)
}

// SessionIssuer resolves the caller, minting an anonymous session key when
// the request has none, and writes the session cookie.
type SessionIssuer interface {
	ResolveSession(r *http.Request) (caller entities.Caller, issued bool)
	IssueSession(w http.ResponseWriter, caller entities.Caller)
}

// TripHandler handles trip planning requests
type TripHandler struct {
	planner  TripPlanner
	sessions SessionIssuer
}

// NewTripHandler creates a new trip handler
func NewTripHandler(planner TripPlanner, sessions SessionIssuer) *TripHandler {
	return &TripHandler{planner: planner, sessions: sessions}
}

type planTripRequest struct {
	FromLat       *float64 `json:"fromLat" validate:"required"`
	FromLon       *float64 `json:"fromLon" validate:"required"`
	ToLat         *float64 `json:"toLat" validate:"required"`
	ToLon         *float64 `json:"toLon" validate:"required"`
	Date          string   `json:"date" validate:"required"`
	Time          string   `json:"time"`
	RequestedDate string   `json:"requested_date"`
	RequestedTime string   `json:"requested_time"`
	Mode          string   `json:"mode"`
}

// PlanTrip handles POST /api/plan-trip
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var payload planTripRequest
	if errs := decodeJSON(w, r, &payload); errs != nil {
		respondWithJSON(w, http.StatusBadRequest, errs)
		return
	}

	caller, issued := h.sessions.ResolveSession(r)

	plan, err := h.planner.PlanTrip(r.Context(), services.PlanTripRequest{
		FromLat:       *payload.FromLat,
		FromLon:       *payload.FromLon,
		ToLat:         *payload.ToLat,
		ToLon:         *payload.ToLon,
		Date:          payload.Date,
		Time:          payload.Time,
		RequestedDate: payload.RequestedDate,
		RequestedTime: payload.RequestedTime,
		Mode:          payload.Mode,
	}, caller)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	// The session exists once a search has been stored under it.
	if issued {
		h.sessions.IssueSession(w, caller)
	}
	respondWithJSON(w, http.StatusOK, plan)
}
