package repositories

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// FavoritePlaceRepository defines the interface for favorite place operations.
// Every lookup is scoped to the owning user.
type FavoritePlaceRepository interface {
	Create(ctx context.Context, place *entities.FavoritePlace) error
	GetByID(ctx context.Context, userID, id string) (*entities.FavoritePlace, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.FavoritePlace, error)
	// ListAll pages through every place, ordered by id, for reindexing
	ListAll(ctx context.Context, limit, offset int) ([]*entities.FavoritePlace, error)
	Update(ctx context.Context, place *entities.FavoritePlace) error
	Delete(ctx context.Context, userID, id string) error
	// ClearDefault unsets is_default on the user's other places
	ClearDefault(ctx context.Context, userID, exceptID string) error
}

// PlaceSearchRepository defines the interface for full-text place search
type PlaceSearchRepository interface {
	Index(ctx context.Context, place *entities.FavoritePlace) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, userID, query string, limit int) ([]*entities.FavoritePlace, error)
}
