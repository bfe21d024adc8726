package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const favoritePlacesTable = "favorite_places"

var favoritePlaceColumns = []interface{}{
	"id", "user_id", "address", "type", "is_default", "lat", "lon", "created_at",
}

// FavoritePlaceAdapter implements FavoritePlaceRepository using PostgreSQL
type FavoritePlaceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFavoritePlaceAdapter creates a new favorite place adapter
func NewFavoritePlaceAdapter(client *postgres.Client) repositories.FavoritePlaceRepository {
	return &FavoritePlaceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new favorite place
func (a *FavoritePlaceAdapter) Create(ctx context.Context, place *entities.FavoritePlace) error {
	if place.ID == "" {
		place.ID = uuid.NewString()
	}
	if place.CreatedAt.IsZero() {
		place.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":         place.ID,
		"user_id":    place.UserID,
		"address":    place.Address,
		"type":       place.Type,
		"is_default": place.IsDefault,
		"lat":        nullFloat(place.Lat),
		"lon":        nullFloat(place.Lon),
		"created_at": place.CreatedAt,
	}

	query, args, err := a.db.Insert(favoritePlacesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create favorite place", err)
	}

	return nil
}

// GetByID retrieves one of the user's places
func (a *FavoritePlaceAdapter) GetByID(ctx context.Context, userID, id string) (*entities.FavoritePlace, error) {
	query, args, err := a.db.Select(favoritePlaceColumns...).
		From(favoritePlacesTable).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	place, err := scanFavoritePlace(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("favorite place with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get favorite place", err)
	}

	return place, nil
}

// ListByUser returns the user's places, defaults first
func (a *FavoritePlaceAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.FavoritePlace, error) {
	ds := a.db.Select(favoritePlaceColumns...).
		From(favoritePlacesTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("is_default").Desc(), goqu.I("created_at").Asc())

	return a.list(ctx, ds)
}

// ListAll pages through every stored place
func (a *FavoritePlaceAdapter) ListAll(ctx context.Context, limit, offset int) ([]*entities.FavoritePlace, error) {
	ds := a.db.Select(favoritePlaceColumns...).
		From(favoritePlacesTable).
		Order(goqu.I("id").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	return a.list(ctx, ds)
}

func (a *FavoritePlaceAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.FavoritePlace, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list favorite places", err)
	}
	defer rows.Close()

	places := []*entities.FavoritePlace{}
	for rows.Next() {
		place, err := scanFavoritePlace(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan favorite place", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate favorite places", err)
	}

	return places, nil
}

// Update replaces the mutable fields of a place
func (a *FavoritePlaceAdapter) Update(ctx context.Context, place *entities.FavoritePlace) error {
	query, args, err := a.db.Update(favoritePlacesTable).
		Set(goqu.Record{
			"address":    place.Address,
			"type":       place.Type,
			"is_default": place.IsDefault,
			"lat":        nullFloat(place.Lat),
			"lon":        nullFloat(place.Lon),
		}).
		Where(goqu.Ex{"id": place.ID, "user_id": place.UserID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execExpectingRow(ctx, query, args, "failed to update favorite place", place.ID)
}

// Delete removes one of the user's places
func (a *FavoritePlaceAdapter) Delete(ctx context.Context, userID, id string) error {
	query, args, err := a.db.Delete(favoritePlacesTable).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	return a.execExpectingRow(ctx, query, args, "failed to delete favorite place", id)
}

// ClearDefault unsets the default flag on every other place of the user
func (a *FavoritePlaceAdapter) ClearDefault(ctx context.Context, userID, exceptID string) error {
	ds := a.db.Update(favoritePlacesTable).
		Set(goqu.Record{"is_default": false}).
		Where(goqu.Ex{"user_id": userID, "is_default": true})
	if exceptID != "" {
		ds = ds.Where(goqu.C("id").Neq(exceptID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to clear default place", err)
	}
	return nil
}

func (a *FavoritePlaceAdapter) execExpectingRow(ctx context.Context, query string, args []interface{}, failure, id string) error {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(failure, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("favorite place with id %s not found", id))
	}
	return nil
}

func scanFavoritePlace(row rowScanner) (*entities.FavoritePlace, error) {
	place := &entities.FavoritePlace{}
	var lat, lon sql.NullFloat64

	err := row.Scan(
		&place.ID,
		&place.UserID,
		&place.Address,
		&place.Type,
		&place.IsDefault,
		&lat,
		&lon,
		&place.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	place.Lat = floatPtr(lat)
	place.Lon = floatPtr(lon)
	return place, nil
}
