package services

import (
	"context"
	"strings"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

// BookingService records the trips users commit to, with their CO2 footprint
type BookingService struct {
	repo      repositories.BookingRepository
	emissions providers.EmissionsCalculator
}

// NewBookingService creates a new booking service
func NewBookingService(repo repositories.BookingRepository, emissions providers.EmissionsCalculator) *BookingService {
	return &BookingService{repo: repo, emissions: emissions}
}

// List returns the user's bookings, newest first
func (s *BookingService) List(ctx context.Context, userID string, limit, offset int) ([]*entities.Booking, error) {
	limit, offset = clampPage(limit, offset)
	bookings, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*entities.Booking{}
	}
	return bookings, nil
}

// Create stores a booking for the user. When a distance is given the CO2
// emitted and saved against driving are filled in.
func (s *BookingService) Create(ctx context.Context, userID string, booking *entities.Booking) error {
	booking.Origin = strings.TrimSpace(booking.Origin)
	booking.Destination = strings.TrimSpace(booking.Destination)
	booking.Mode = strings.ToLower(strings.TrimSpace(booking.Mode))

	switch {
	case booking.Origin == "":
		return apperrors.NewFieldValidationError("origin", "This field may not be blank.")
	case booking.Destination == "":
		return apperrors.NewFieldValidationError("destination", "This field may not be blank.")
	case booking.Mode == "":
		return apperrors.NewFieldValidationError("mode", "This field may not be blank.")
	case booking.Time.IsZero():
		return apperrors.NewFieldValidationError("time", "This field is required.")
	case booking.DistanceKm != nil && *booking.DistanceKm < 0:
		return apperrors.NewFieldValidationError("distance_km", "Distance cannot be negative.")
	}

	booking.ID = ""
	booking.UserID = userID
	booking.CO2EmittedKg = nil
	booking.CO2SavedKg = nil
	if booking.DistanceKm != nil && s.emissions != nil {
		footprint := s.emissions.Calculate(booking.Mode, *booking.DistanceKm)
		booking.CO2EmittedKg = &footprint.EmittedKg
		booking.CO2SavedKg = &footprint.SavedKg
	}

	return s.repo.Create(ctx, booking)
}
