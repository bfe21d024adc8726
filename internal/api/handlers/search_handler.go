package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/domain/entities"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

// SearchHistory is the search history surface used by SearchHandler
type SearchHistory interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*entities.Search, error)
	Create(ctx context.Context, userID string, search *entities.Search) error
	Latest(ctx context.Context, caller entities.Caller, targetUserID string) (*entities.Search, error)
}

// SearchHandler handles search history endpoints
type SearchHandler struct {
	history SearchHistory
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(history SearchHistory) *SearchHandler {
	return &SearchHandler{history: history}
}

type searchRequest struct {
	FromLat     *float64 `json:"from_lat" validate:"required,gte=-90,lte=90"`
	FromLon     *float64 `json:"from_lon" validate:"required,gte=-180,lte=180"`
	ToLat       *float64 `json:"to_lat" validate:"required,gte=-90,lte=90"`
	ToLon       *float64 `json:"to_lon" validate:"required,gte=-180,lte=180"`
	TripDate    string   `json:"trip_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	RequestedAt string   `json:"requested_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Modes       string   `json:"modes" validate:"required,max=20"`
}

// ListSearches handles GET /api/searches
func (h *SearchHandler) ListSearches(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	limit, offset := pageParams(r)

	searches, err := h.history.List(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, "Searches retrieved successfully", searches)
}

// CreateSearch handles POST /api/searches
func (h *SearchHandler) CreateSearch(w http.ResponseWriter, r *http.Request) {
	var payload searchRequest
	if errs := decodeJSON(w, r, &payload); errs != nil {
		respondWithFailure(w, http.StatusBadRequest, errs)
		return
	}

	// both layouts were checked by the validator
	tripDate, _ := time.Parse(time.RFC3339, payload.TripDate)
	search := &entities.Search{
		FromLat:  *payload.FromLat,
		FromLon:  *payload.FromLon,
		ToLat:    *payload.ToLat,
		ToLon:    *payload.ToLon,
		TripDate: tripDate,
		Modes:    payload.Modes,
	}
	if payload.RequestedAt != "" {
		search.RequestedAt, _ = time.Parse(time.RFC3339, payload.RequestedAt)
	}

	caller := middleware.CallerFromContext(r.Context())
	if err := h.history.Create(r.Context(), caller.UserID, search); err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, "Search created successfully", search)
}

// TrackActivity handles GET /api/track?id=
func (h *SearchHandler) TrackActivity(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	search, err := h.history.Latest(r.Context(), caller, r.URL.Query().Get("id"))
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Type != apperrors.ErrorTypeInternal {
			respondWithFailure(w, apperrors.HTTPStatus(err), appErr.Message)
			return
		}
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, "", search)
}
