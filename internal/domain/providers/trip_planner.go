package providers

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// PlanQuery holds the variables of a plan request.
// Date is YYYY-MM-DD and Time is HH:MM:SS in the planner's local time.
type PlanQuery struct {
	FromLat float64
	FromLon float64
	ToLat   float64
	ToLon   float64
	Date    string
	Time    string
}

// TripPlanner defines the interface to the external journey planner
type TripPlanner interface {
	// FetchStops returns the full stop directory
	FetchStops(ctx context.Context) ([]entities.Stop, error)

	// PlanTrip returns candidate itineraries in planner order
	PlanTrip(ctx context.Context, query PlanQuery) ([]entities.Itinerary, error)

	// FetchStopTimes returns upcoming stop times, or nil when the stop is unknown
	FetchStopTimes(ctx context.Context, stopID string) (*entities.StopTimes, error)
}
