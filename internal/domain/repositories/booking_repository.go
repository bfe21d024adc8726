package repositories

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, booking *entities.Booking) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Booking, error)
}
