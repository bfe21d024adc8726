package services

import (
	"context"
	"strings"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	// timeNowSentinel asks for the current wall-clock time.
	timeNowSentinel = "timenow"
)

// PlanTripRequest holds the inputs of a trip plan request
type PlanTripRequest struct {
	FromLat       float64
	FromLon       float64
	ToLat         float64
	ToLon         float64
	Date          string
	Time          string
	RequestedDate string
	RequestedTime string
	Mode          string
}

// TripPlanningService proxies plan requests to the journey planner, shapes
// the itineraries for the client and records each search.
type TripPlanningService struct {
	planner  providers.TripPlanner
	searches repositories.SearchRepository
	events   providers.EventBus
	metrics  *observability.Metrics
	location *time.Location
	now      func() time.Time
}

// NewTripPlanningService creates a new trip planning service. events and
// metrics may be nil.
func NewTripPlanningService(
	planner providers.TripPlanner,
	searches repositories.SearchRepository,
	events providers.EventBus,
	metrics *observability.Metrics,
	location *time.Location,
) *TripPlanningService {
	if location == nil {
		location = time.UTC
	}
	return &TripPlanningService{
		planner:  planner,
		searches: searches,
		events:   events,
		metrics:  metrics,
		location: location,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for "timenow" substitution
func (s *TripPlanningService) WithClock(now func() time.Time) *TripPlanningService {
	s.now = now
	return s
}

type planInputs struct {
	filter    ModeFilter
	tripAt    time.Time
	requested time.Time
	query     providers.PlanQuery
}

// PlanTrip plans a trip and records the search for the caller. No search is
// recorded when the planner cannot be reached or rejects the request.
func (s *TripPlanningService) PlanTrip(ctx context.Context, req PlanTripRequest, caller entities.Caller) (*entities.TripPlan, error) {
	ctx, span := observability.StartSpan(ctx, "TripPlanningService.PlanTrip")
	defer span.End()

	in, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	stops, err := s.planner.FetchStops(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	fromStop := NearestStop(req.FromLat, req.FromLon, stops)
	toStop := NearestStop(req.ToLat, req.ToLon, stops)

	itineraries, err := s.planner.PlanTrip(ctx, in.query)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	plan := &entities.TripPlan{
		Options: AggregateItineraries(itineraries, in.filter, s.location),
	}
	if fromStop != nil {
		plan.FromStationName = &fromStop.Name
	}
	if toStop != nil {
		plan.ToStationName = &toStop.Name
	}

	if err := s.recordSearch(ctx, req, in, caller); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return plan, nil
}

func (s *TripPlanningService) validate(req PlanTripRequest) (*planInputs, error) {
	filter, ok := ParseModeFilter(req.Mode)
	if filter == "" {
		return nil, apperrors.NewFieldValidationError("mode", "Mode is required and cannot be empty.")
	}
	if !ok {
		return nil, apperrors.NewFieldValidationError("mode", "Mode must be one of all, bus, walk, bicycle, scooter.")
	}

	now := s.now().In(s.location).Format(timeLayout)
	tripTime := defaultTime(req.Time, now)
	requestedTime := defaultTime(req.RequestedTime, now)

	if _, err := time.Parse(timeLayout, tripTime); err != nil {
		return nil, apperrors.NewFieldValidationError("time", "Time must be in HH:MM:SS format.")
	}
	if _, err := time.Parse(timeLayout, requestedTime); err != nil {
		return nil, apperrors.NewFieldValidationError("requested_time", "Time must be in HH:MM:SS format.")
	}

	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return nil, apperrors.NewFieldValidationError("date", "Date must be in YYYY-MM-DD format.")
	}
	requestedDate := req.RequestedDate
	if requestedDate == "" {
		requestedDate = req.Date
	}
	if _, err := time.Parse(dateLayout, requestedDate); err != nil {
		return nil, apperrors.NewFieldValidationError("requested_date", "Date must be in YYYY-MM-DD format.")
	}

	tripAt, err := time.ParseInLocation(dateLayout+" "+timeLayout, req.Date+" "+tripTime, s.location)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("date", err.Error())
	}
	requestedAt, err := time.ParseInLocation(dateLayout+" "+timeLayout, requestedDate+" "+requestedTime, s.location)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("requested_date", err.Error())
	}

	return &planInputs{
		filter:    filter,
		tripAt:    tripAt,
		requested: requestedAt,
		query: providers.PlanQuery{
			FromLat: req.FromLat,
			FromLon: req.FromLon,
			ToLat:   req.ToLat,
			ToLon:   req.ToLon,
			Date:    req.Date,
			Time:    tripTime,
		},
	}, nil
}

func defaultTime(value, now string) string {
	if value == "" || strings.EqualFold(value, timeNowSentinel) {
		return now
	}
	return value
}

func (s *TripPlanningService) recordSearch(ctx context.Context, req PlanTripRequest, in *planInputs, caller entities.Caller) error {
	search := &entities.Search{
		FromLat:     req.FromLat,
		FromLon:     req.FromLon,
		ToLat:       req.ToLat,
		ToLon:       req.ToLon,
		TripDate:    in.tripAt,
		RequestedAt: in.requested,
		Modes:       string(in.filter),
	}
	switch {
	case caller.Authenticated():
		userID := caller.UserID
		search.UserID = &userID
	case caller.SessionKey != "":
		sessionKey := caller.SessionKey
		search.AnonymousSessionKey = &sessionKey
	}

	if err := s.searches.Create(ctx, search); err != nil {
		observability.ComponentLogger(ctx, "trip_planning").Error().Err(err).Msg("failed to record search")
		return apperrors.NewInternalError("failed to record search", err)
	}

	observability.RecordSearch(ctx, s.metrics, search.Modes)
	publishSearchEvent(ctx, s.events, entities.NewSearchRecordedEvent(search))
	return nil
}

// publishSearchEvent hands an event to the bus. Failures are logged only.
func publishSearchEvent(ctx context.Context, bus providers.EventBus, event *entities.SearchEvent) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, event); err != nil {
		observability.ComponentLogger(ctx, "search_events").Warn().Err(err).
			Str("event_type", string(event.EventType)).
			Msg("failed to publish search event")
	}
}
