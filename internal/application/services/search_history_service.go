package services

import (
	"context"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// SearchHistoryService exposes a user's recorded searches
type SearchHistoryService struct {
	repo    repositories.SearchRepository
	events  providers.EventBus
	metrics *observability.Metrics
}

// NewSearchHistoryService creates a new search history service
func NewSearchHistoryService(repo repositories.SearchRepository, events providers.EventBus, metrics *observability.Metrics) *SearchHistoryService {
	return &SearchHistoryService{repo: repo, events: events, metrics: metrics}
}

// List returns the user's searches, newest first
func (s *SearchHistoryService) List(ctx context.Context, userID string, limit, offset int) ([]*entities.Search, error) {
	limit, offset = clampPage(limit, offset)
	searches, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if searches == nil {
		searches = []*entities.Search{}
	}
	return searches, nil
}

// Create records a search made outside the plan endpoint on behalf of userID
func (s *SearchHistoryService) Create(ctx context.Context, userID string, search *entities.Search) error {
	filter, ok := ParseModeFilter(search.Modes)
	if !ok {
		return apperrors.NewFieldValidationError("modes", "Mode must be one of all, bus, walk, bicycle, scooter.")
	}

	search.ID = ""
	search.Modes = string(filter)
	search.UserID = &userID
	search.AnonymousSessionKey = nil
	if search.RequestedAt.IsZero() {
		search.RequestedAt = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, search); err != nil {
		return err
	}

	observability.RecordSearch(ctx, s.metrics, search.Modes)
	publishSearchEvent(ctx, s.events, entities.NewSearchRecordedEvent(search))
	return nil
}

// Latest returns the most recent search of targetUserID. Callers may only
// look up their own activity.
func (s *SearchHistoryService) Latest(ctx context.Context, caller entities.Caller, targetUserID string) (*entities.Search, error) {
	if targetUserID == "" {
		return nil, apperrors.NewFieldValidationError("id", "Missing 'id' parameter")
	}
	if !caller.Authenticated() || caller.UserID != targetUserID {
		return nil, apperrors.NewNotFoundError("No search activity found.")
	}
	return s.repo.LatestByUser(ctx, targetUserID)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
