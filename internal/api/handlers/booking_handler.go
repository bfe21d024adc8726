package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

// Bookings is the booking surface used by BookingHandler
type Bookings interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*entities.Booking, error)
	Create(ctx context.Context, userID string, booking *entities.Booking) error
}

// BookingHandler handles booking endpoints
type BookingHandler struct {
	bookings Bookings
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings Bookings) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type bookingRequest struct {
	Origin      string   `json:"origin" validate:"required,max=255"`
	Destination string   `json:"destination" validate:"required,max=255"`
	Time        string   `json:"time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Mode        string   `json:"mode" validate:"required,max=50"`
	DistanceKm  *float64 `json:"distance_km" validate:"omitempty,gte=0"`
}

// ListBookings handles GET /api/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	limit, offset := pageParams(r)

	bookings, err := h.bookings.List(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var payload bookingRequest
	if errs := decodeJSON(w, r, &payload); errs != nil {
		respondWithFailure(w, http.StatusBadRequest, errs)
		return
	}

	departure, _ := time.Parse(time.RFC3339, payload.Time)
	booking := &entities.Booking{
		Origin:      payload.Origin,
		Destination: payload.Destination,
		Time:        departure,
		Mode:        payload.Mode,
		DistanceKm:  payload.DistanceKm,
	}

	caller := middleware.CallerFromContext(r.Context())
	if err := h.bookings.Create(r.Context(), caller.UserID, booking); err != nil {
		respondWithEnvelopeError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, "Booking created successfully", booking)
}
