package services_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/pkg/config"
	"github.com/somos/attraction/backend/pkg/geo"
)

func intPtr(v int) *int { return &v }

func TestNearestStop(t *testing.T) {
	assert.Nil(t, services.NearestStop(39.3, 16.25, nil))

	stops := []entities.Stop{
		{ID: "a", Lat: 39.30, Lon: 16.25},
		{ID: "b", Lat: 39.30, Lon: 16.25},
		{ID: "c", Lat: 39.35, Lon: 16.20},
	}
	nearest := services.NearestStop(39.3001, 16.2501, stops)
	require.NotNil(t, nearest)
	assert.Equal(t, "a", nearest.ID, "first stop wins ties")
}

func TestNearestStop_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		stops := make([]entities.Stop, 1+rng.Intn(30))
		for k := range stops {
			stops[k] = entities.Stop{Lat: 39 + rng.Float64(), Lon: 16 + rng.Float64()}
		}
		lat, lon := 39+rng.Float64(), 16+rng.Float64()

		nearest := services.NearestStop(lat, lon, stops)
		require.NotNil(t, nearest)

		best := geo.Haversine(lon, lat, nearest.Lon, nearest.Lat)
		for _, s := range stops {
			assert.LessOrEqual(t, best, geo.Haversine(lon, lat, s.Lon, s.Lat))
		}
	}
}

func TestStopService_ListStopsInAreas(t *testing.T) {
	planner := new(MockTripPlanner)
	service := services.NewStopService(planner, config.DefaultStopAreas(), nil)

	planner.On("FetchStops", mock.Anything).Return([]entities.Stop{
		{ID: "cosenza", Lat: 39.30, Lon: 16.25},
		{ID: "rende", Lat: 39.36, Lon: 16.18},
		{ID: "catanzaro", Lat: 38.90, Lon: 16.59},
		{ID: "unlocated", Lat: 0, Lon: 16.25},
	}, nil)

	stops, err := service.ListStopsInAreas(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"cosenza", "rende"}, ids)
}

func TestStopService_ListStopsInAreas_Error(t *testing.T) {
	planner := new(MockTripPlanner)
	service := services.NewStopService(planner, config.DefaultStopAreas(), nil)
	planner.On("FetchStops", mock.Anything).Return(nil, errors.New("boom"))

	_, err := service.ListStopsInAreas(context.Background())
	assert.Error(t, err)
}

func TestStopService_StopSchedule(t *testing.T) {
	planner := new(MockTripPlanner)
	// 08:00:00 local, 28800 seconds after midnight.
	service := services.NewStopService(planner, nil, time.UTC).
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) })

	planner.On("FetchStopTimes", mock.Anything, "1:100").Return(&entities.StopTimes{
		Name: "Autostazione",
		Times: []entities.StopTime{
			{ScheduledArrival: 30000, RealtimeArrival: intPtr(30060), ScheduledDeparture: 30000, RealtimeDeparture: 30090, RouteShortName: "5", RouteLongName: "Cosenza - Unical"},
			{ScheduledArrival: 28000, RealtimeArrival: intPtr(28000), RouteShortName: "past"},
			{ScheduledArrival: 29000, RealtimeArrival: nil, RouteShortName: "no-realtime"},
			{ScheduledArrival: 86400, RealtimeArrival: intPtr(86400), ScheduledDeparture: 86400, RouteShortName: "last", RouteLongName: "Night"},
			{ScheduledArrival: 90000, RealtimeArrival: intPtr(90000), RouteShortName: "tomorrow"},
			{ScheduledArrival: 28800, RealtimeArrival: intPtr(28800), ScheduledDeparture: 28860, RouteShortName: "3", RouteLongName: "Rende"},
		},
	}, nil)

	schedule := service.StopSchedule(context.Background(), "1:100")

	assert.Equal(t, "Autostazione", schedule.StopName)
	require.Len(t, schedule.UpcomingTrips, 3)
	assert.Equal(t, entities.UpcomingTrip{Route: "3", Name: "Rende", Arrival: "8:00", Departure: "8:01"}, schedule.UpcomingTrips[0])
	assert.Equal(t, entities.UpcomingTrip{Route: "5", Name: "Cosenza - Unical", Arrival: "8:21", Departure: "8:21"}, schedule.UpcomingTrips[1])
	assert.Equal(t, "24:00", schedule.UpcomingTrips[2].Arrival)
}

func TestStopService_StopSchedule_Unknown(t *testing.T) {
	tests := []struct {
		name  string
		times *entities.StopTimes
		err   error
	}{
		{"unknown stop", nil, nil},
		{"planner failure", nil, errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := new(MockTripPlanner)
			service := services.NewStopService(planner, nil, nil)
			if tt.times == nil {
				planner.On("FetchStopTimes", mock.Anything, "x").Return(nil, tt.err)
			}

			schedule := service.StopSchedule(context.Background(), "x")
			assert.Equal(t, entities.UnknownStopName, schedule.StopName)
			assert.NotNil(t, schedule.UpcomingTrips)
			assert.Empty(t, schedule.UpcomingTrips)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", services.FormatClock(0))
	assert.Equal(t, "8:05", services.FormatClock(8*3600+5*60+59))
	assert.Equal(t, "23:59", services.FormatClock(86399))
	assert.Equal(t, "24:00", services.FormatClock(86400))
}
