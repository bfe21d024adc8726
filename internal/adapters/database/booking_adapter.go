package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

// BookingAdapter implements BookingRepository using PostgreSQL
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a booking
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":             booking.ID,
		"user_id":        booking.UserID,
		"origin":         booking.Origin,
		"destination":    booking.Destination,
		"time":           booking.Time,
		"mode":           booking.Mode,
		"distance_km":    nullFloat(booking.DistanceKm),
		"co2_emitted_kg": nullFloat(booking.CO2EmittedKg),
		"co2_saved_kg":   nullFloat(booking.CO2SavedKg),
		"created_at":     booking.CreatedAt,
	}

	query, args, err := a.db.Insert("bookings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build booking insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create booking", err)
	}

	return nil
}

// ListByUser returns a user's bookings, latest trip first
func (a *BookingAdapter) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Booking, error) {
	ds := a.db.Select(
		"id", "user_id", "origin", "destination", "time", "mode",
		"distance_km", "co2_emitted_kg", "co2_saved_kg", "created_at",
	).From("bookings").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("time").Desc())

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
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	bookings := []*entities.Booking{}
	for rows.Next() {
		b := &entities.Booking{}
		var distance, emitted, saved sql.NullFloat64
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Origin,
			&b.Destination,
			&b.Time,
			&b.Mode,
			&distance,
			&emitted,
			&saved,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		b.DistanceKm = floatPtr(distance)
		b.CO2EmittedKg = floatPtr(emitted)
		b.CO2SavedKg = floatPtr(saved)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate bookings", err)
	}

	return bookings, nil
}
