package handlers

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/somos/attraction/backend/internal/api/loaders"
	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

// FavoritePlaces is the favorite place surface used by PlaceHandler
type FavoritePlaces interface {
	List(ctx context.Context, userID string) ([]*entities.FavoritePlace, error)
	Get(ctx context.Context, userID, id string) (*entities.FavoritePlace, error)
	Create(ctx context.Context, userID string, place *entities.FavoritePlace) error
	Update(ctx context.Context, userID, id string, place *entities.FavoritePlace) error
	Delete(ctx context.Context, userID, id string) error
	Search(ctx context.Context, userID, query string, limit int) ([]*entities.FavoritePlace, error)
}

// PlaceHandler handles favorite place endpoints
type PlaceHandler struct {
	places FavoritePlaces
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(places FavoritePlaces) *PlaceHandler {
	return &PlaceHandler{places: places}
}

type placeRequest struct {
	Address   string   `json:"address" validate:"required,max=255"`
	Type      string   `json:"type" validate:"required,max=50"`
	IsDefault bool     `json:"is_default"`
	Lat       *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon       *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (p placeRequest) toEntity() *entities.FavoritePlace {
	return &entities.FavoritePlace{
		Address:   p.Address,
		Type:      p.Type,
		IsDefault: p.IsDefault,
		Lat:       p.Lat,
		Lon:       p.Lon,
	}
}

// ListPlaces handles GET /api/places
func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	places, err := h.places.List(r.Context(), caller.UserID)
	if err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}
	loaders.AnnotateNearestStops(r.Context(), places)

	respondWithData(w, http.StatusOK, "Favorite places retrieved successfully", places)
}

// CreatePlace handles POST /api/places
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var payload placeRequest
	if errs := decodeJSON(w, r, &payload); errs != nil {
		respondWithFailure(w, http.StatusBadRequest, errs)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	place := payload.toEntity()
	if err := h.places.Create(r.Context(), caller.UserID, place); err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, "Favorite place added successfully", place)
}

// GetPlace handles GET /api/places/{id}
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	place, err := h.places.Get(r.Context(), caller.UserID, r.PathValue("id"))
	if err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}
	loaders.AnnotateNearestStops(r.Context(), []*entities.FavoritePlace{place})

	respondWithData(w, http.StatusOK, "", place)
}

// UpdatePlace handles PUT /api/places/{id}. Only JSON bodies are accepted.
func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType != "application/json" {
		respondWithFailure(w, http.StatusUnsupportedMediaType, "Unsupported media type")
		return
	}

	var payload placeRequest
	if errs := decodeJSON(w, r, &payload); errs != nil {
		respondWithFailure(w, http.StatusBadRequest, errs)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	place := payload.toEntity()
	if err := h.places.Update(r.Context(), caller.UserID, r.PathValue("id"), place); err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, "Favorite place updated successfully", place)
}

// DeletePlace handles DELETE /api/places/{id}
func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	if err := h.places.Delete(r.Context(), caller.UserID, r.PathValue("id")); err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchPlaces handles GET /api/places/search?q=
func (h *PlaceHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	places, err := h.places.Search(r.Context(), caller.UserID, r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}
	loaders.AnnotateNearestStops(r.Context(), places)

	respondWithData(w, http.StatusOK, "", places)
}
