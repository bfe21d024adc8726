package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	"github.com/somos/attraction/backend/pkg/geo"
)

const secondsPerDay = 24 * 60 * 60

// StopService serves the planner's stop directory and stop schedules
type StopService struct {
	planner  providers.TripPlanner
	areas    []geo.BoundingBox
	location *time.Location
	now      func() time.Time
}

// NewStopService creates a new stop service. areas restricts ListStopsInAreas.
func NewStopService(planner providers.TripPlanner, areas []geo.BoundingBox, location *time.Location) *StopService {
	if location == nil {
		location = time.UTC
	}
	return &StopService{
		planner:  planner,
		areas:    areas,
		location: location,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to find upcoming departures
func (s *StopService) WithClock(now func() time.Time) *StopService {
	s.now = now
	return s
}

// ListStops returns the planner's full stop directory
func (s *StopService) ListStops(ctx context.Context) ([]entities.Stop, error) {
	return s.planner.FetchStops(ctx)
}

// ListStopsInAreas returns the stops that fall inside a configured service
// area. Stops with a zero latitude or longitude are treated as unlocated.
func (s *StopService) ListStopsInAreas(ctx context.Context) ([]entities.Stop, error) {
	stops, err := s.planner.FetchStops(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]entities.Stop, 0, len(stops))
	for _, stop := range stops {
		if stop.Lat == 0 || stop.Lon == 0 {
			continue
		}
		if geo.AnyContains(s.areas, stop.Lat, stop.Lon) {
			filtered = append(filtered, stop)
		}
	}
	return filtered, nil
}

// NearestStop returns the stop closest to the coordinate, or nil when there
// are no stops. The first stop wins ties.
func NearestStop(lat, lon float64, stops []entities.Stop) *entities.Stop {
	var nearest *entities.Stop
	best := math.Inf(1)
	for i := range stops {
		if d := geo.Haversine(lon, lat, stops[i].Lon, stops[i].Lat); d < best {
			best = d
			nearest = &stops[i]
		}
	}
	return nearest
}

// StopSchedule returns the departures from a stop between now and the end of
// the service day. Lookup failures render as an unknown stop, never an error.
func (s *StopService) StopSchedule(ctx context.Context, stopID string) *entities.StopSchedule {
	times, err := s.planner.FetchStopTimes(ctx, stopID)
	if err != nil {
		observability.ComponentLogger(ctx, "stop_schedule").Warn().Err(err).
			Str("stop_id", stopID).
			Msg("failed to fetch stop times")
		return entities.UnknownStopSchedule(stopID)
	}
	if times == nil {
		observability.ComponentLogger(ctx, "stop_schedule").Warn().
			Str("stop_id", stopID).
			Msg("stop not found")
		return entities.UnknownStopSchedule(stopID)
	}

	now := s.now().In(s.location)
	nowSeconds := now.Hour()*3600 + now.Minute()*60 + now.Second()

	upcoming := make([]entities.StopTime, 0, len(times.Times))
	for _, st := range times.Times {
		if st.RealtimeArrival == nil {
			continue
		}
		if arrival := *st.RealtimeArrival; arrival >= nowSeconds && arrival <= secondsPerDay {
			upcoming = append(upcoming, st)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return *upcoming[i].RealtimeArrival < *upcoming[j].RealtimeArrival
	})

	schedule := &entities.StopSchedule{
		StopID:        stopID,
		StopName:      times.Name,
		UpcomingTrips: make([]entities.UpcomingTrip, 0, len(upcoming)),
	}
	for _, st := range upcoming {
		arrival := *st.RealtimeArrival
		if arrival == 0 {
			arrival = st.ScheduledArrival
		}
		departure := st.RealtimeDeparture
		if departure == 0 {
			departure = st.ScheduledDeparture
		}
		schedule.UpcomingTrips = append(schedule.UpcomingTrips, entities.UpcomingTrip{
			Route:     st.RouteShortName,
			Name:      st.RouteLongName,
			Arrival:   FormatClock(arrival),
			Departure: FormatClock(departure),
		})
	}
	return schedule
}

// FormatClock renders seconds since midnight as H:MM, dropping seconds.
// The end of the service day renders as 24:00.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/3600, (seconds%3600)/60)
}
