package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const defaultPlaceSearchLimit = 10

// FavoritePlaceService manages the places a user saved. Every operation is
// scoped to the owning user.
type FavoritePlaceService struct {
	repo   repositories.FavoritePlaceRepository
	search repositories.PlaceSearchRepository
}

// NewFavoritePlaceService creates a new favorite place service. search may be
// nil, in which case places are not indexed and Search is unavailable.
func NewFavoritePlaceService(repo repositories.FavoritePlaceRepository, search repositories.PlaceSearchRepository) *FavoritePlaceService {
	return &FavoritePlaceService{repo: repo, search: search}
}

// List returns the user's places
func (s *FavoritePlaceService) List(ctx context.Context, userID string) ([]*entities.FavoritePlace, error) {
	places, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []*entities.FavoritePlace{}
	}
	return places, nil
}

// Get returns one of the user's places
func (s *FavoritePlaceService) Get(ctx context.Context, userID, id string) (*entities.FavoritePlace, error) {
	if err := checkPlaceID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

// Create stores a new place for the user. A new default place takes the
// default flag away from the user's other places.
func (s *FavoritePlaceService) Create(ctx context.Context, userID string, place *entities.FavoritePlace) error {
	if err := normalizePlace(place); err != nil {
		return err
	}
	place.ID = ""
	place.UserID = userID

	if err := s.repo.Create(ctx, place); err != nil {
		return err
	}
	if place.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, place.ID); err != nil {
			return err
		}
	}

	s.index(ctx, place)
	return nil
}

// Update replaces the mutable fields of one of the user's places
func (s *FavoritePlaceService) Update(ctx context.Context, userID, id string, place *entities.FavoritePlace) error {
	if err := checkPlaceID(id); err != nil {
		return err
	}
	if err := normalizePlace(place); err != nil {
		return err
	}
	place.ID = id
	place.UserID = userID

	if err := s.repo.Update(ctx, place); err != nil {
		return err
	}
	if place.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, id); err != nil {
			return err
		}
	}

	s.index(ctx, place)
	return nil
}

// Delete removes one of the user's places
func (s *FavoritePlaceService) Delete(ctx context.Context, userID, id string) error {
	if err := checkPlaceID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.Delete(ctx, id); err != nil {
			observability.ComponentLogger(ctx, "favorite_places").Warn().Err(err).
				Str("place_id", id).
				Msg("failed to remove place from search index")
		}
	}
	return nil
}

// Search runs a full-text query over the user's places
func (s *FavoritePlaceService) Search(ctx context.Context, userID, query string, limit int) ([]*entities.FavoritePlace, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewFieldValidationError("q", "Query is required.")
	}
	if s.search == nil {
		return nil, apperrors.NewServiceUnavailableError("place search is not configured", nil)
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPlaceSearchLimit
	}

	places, err := s.search.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []*entities.FavoritePlace{}
	}
	return places, nil
}

// Reindex pushes a single place into the search index
func (s *FavoritePlaceService) Reindex(ctx context.Context, place *entities.FavoritePlace) error {
	if s.search == nil {
		return nil
	}
	return s.search.Index(ctx, place)
}

func (s *FavoritePlaceService) index(ctx context.Context, place *entities.FavoritePlace) {
	if err := s.Reindex(ctx, place); err != nil {
		observability.ComponentLogger(ctx, "favorite_places").Warn().Err(err).
			Str("place_id", place.ID).
			Msg("failed to index place")
	}
}

func checkPlaceID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFoundError("favorite place with id " + id + " not found")
	}
	return nil
}

func normalizePlace(place *entities.FavoritePlace) error {
	place.Address = strings.TrimSpace(place.Address)
	place.Type = strings.ToLower(strings.TrimSpace(place.Type))

	if place.Address == "" {
		return apperrors.NewFieldValidationError("address", "This field may not be blank.")
	}
	if place.Type == "" {
		return apperrors.NewFieldValidationError("type", "This field may not be blank.")
	}
	if (place.Lat == nil) != (place.Lon == nil) {
		return apperrors.NewFieldValidationError("lat", "Latitude and longitude must be given together.")
	}
	if place.HasLocation() && (*place.Lat < -90 || *place.Lat > 90 || *place.Lon < -180 || *place.Lon > 180) {
		return apperrors.NewFieldValidationError("lat", "Coordinates are out of range.")
	}
	return nil
}
