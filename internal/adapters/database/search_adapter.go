package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const searchesTable = "searches"

var searchColumns = []interface{}{
	"id", "user_id", "anonymous_session_key",
	"from_lat", "from_lon", "to_lat", "to_lon",
	"trip_date", "requested_at", "modes",
}

// SearchAdapter implements SearchRepository using PostgreSQL
type SearchAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchAdapter creates a new search adapter
func NewSearchAdapter(client *postgres.Client) repositories.SearchRepository {
	return &SearchAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a search record as a single statement
func (a *SearchAdapter) Create(ctx context.Context, search *entities.Search) error {
	if search == nil {
		return apperrors.NewInternalError("search is nil", fmt.Errorf("search is nil"))
	}
	if search.UserID != nil && search.AnonymousSessionKey != nil {
		return apperrors.NewValidationError("a search belongs to a user or an anonymous session, not both")
	}
	if search.ID == "" {
		search.ID = uuid.NewString()
	}

	record := goqu.Record{
		"id":                    search.ID,
		"user_id":               nullString(search.UserID),
		"anonymous_session_key": nullString(search.AnonymousSessionKey),
		"from_lat":              search.FromLat,
		"from_lon":              search.FromLon,
		"to_lat":                search.ToLat,
		"to_lon":                search.ToLon,
		"trip_date":             search.TripDate,
		"requested_at":          search.RequestedAt,
		"modes":                 search.Modes,
	}

	query, args, err := a.db.Insert(searchesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create search", err)
	}

	return nil
}

// ListByUser returns a user's searches, newest request first
func (a *SearchAdapter) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Search, error) {
	ds := a.db.Select(searchColumns...).
		From(searchesTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("requested_at").Desc(), goqu.I("id").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list searches", err)
	}
	defer rows.Close()

	searches := []*entities.Search{}
	for rows.Next() {
		search, err := scanSearch(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan search", err)
		}
		searches = append(searches, search)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate searches", err)
	}

	return searches, nil
}

// LatestByUser returns the most recent search of a user
func (a *SearchAdapter) LatestByUser(ctx context.Context, userID string) (*entities.Search, error) {
	query, args, err := a.db.Select(searchColumns...).
		From(searchesTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("requested_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	search, err := scanSearch(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("No search activity found.")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get latest search", err)
	}

	return search, nil
}

// LinkSession moves an anonymous session's searches to a user in one UPDATE.
// Re-running it for the same session matches nothing and returns 0.
func (a *SearchAdapter) LinkSession(ctx context.Context, sessionKey, userID string) (int64, error) {
	query, args, err := a.db.Update(searchesTable).
		Set(goqu.Record{
			"user_id":               userID,
			"anonymous_session_key": nil,
		}).
		Where(goqu.Ex{"anonymous_session_key": sessionKey}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build link query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to link anonymous searches", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSearch(row rowScanner) (*entities.Search, error) {
	search := &entities.Search{}
	var userID, sessionKey sql.NullString

	err := row.Scan(
		&search.ID,
		&userID,
		&sessionKey,
		&search.FromLat,
		&search.FromLon,
		&search.ToLat,
		&search.ToLon,
		&search.TripDate,
		&search.RequestedAt,
		&search.Modes,
	)
	if err != nil {
		return nil, err
	}

	search.UserID = stringPtr(userID)
	search.AnonymousSessionKey = stringPtr(sessionKey)
	return search, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	f := value.Float64
	return &f
}
