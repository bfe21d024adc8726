package repositories

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// SearchRepository defines the interface for search history
type SearchRepository interface {
	// Create stores a new search record
	Create(ctx context.Context, search *entities.Search) error

	// ListByUser returns a user's searches, newest first
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Search, error)

	// LatestByUser returns the user's most recent search
	LatestByUser(ctx context.Context, userID string) (*entities.Search, error)

	// LinkSession assigns every search of an anonymous session to a user and
	// clears the session key. It returns the number of records updated.
	LinkSession(ctx context.Context, sessionKey, userID string) (int64, error)
}
