package handlers_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
)

type MockTripPlanner struct {
	mock.Mock
}

func (m *MockTripPlanner) PlanTrip(ctx context.Context, req services.PlanTripRequest, caller entities.Caller) (*entities.TripPlan, error) {
	args := m.Called(ctx, req, caller)
	if plan := args.Get(0); plan != nil {
		return plan.(*entities.TripPlan), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubSessions hands out a fixed session key to requests without one
type stubSessions struct {
	sessionKey string
}

func (s stubSessions) ResolveSession(r *http.Request) (entities.Caller, bool) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.SessionKey != "" {
		return caller, false
	}
	caller.SessionKey = s.sessionKey
	return caller, true
}

func (s stubSessions) IssueSession(w http.ResponseWriter, caller entities.Caller) {
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: caller.SessionKey})
}

type MockStopDirectory struct {
	mock.Mock
}

func (m *MockStopDirectory) ListStopsInAreas(ctx context.Context) ([]entities.Stop, error) {
	args := m.Called(ctx)
	if stops := args.Get(0); stops != nil {
		return stops.([]entities.Stop), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStopDirectory) StopSchedule(ctx context.Context, stopID string) *entities.StopSchedule {
	args := m.Called(ctx, stopID)
	return args.Get(0).(*entities.StopSchedule)
}

type MockSessionLinker struct {
	mock.Mock
}

func (m *MockSessionLinker) OnAuthenticated(ctx context.Context, caller entities.Caller) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}

type MockSearchHistory struct {
	mock.Mock
}

func (m *MockSearchHistory) List(ctx context.Context, userID string, limit, offset int) ([]*entities.Search, error) {
	args := m.Called(ctx, userID, limit, offset)
	if searches := args.Get(0); searches != nil {
		return searches.([]*entities.Search), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchHistory) Create(ctx context.Context, userID string, search *entities.Search) error {
	args := m.Called(ctx, userID, search)
	return args.Error(0)
}

func (m *MockSearchHistory) Latest(ctx context.Context, caller entities.Caller, targetUserID string) (*entities.Search, error) {
	args := m.Called(ctx, caller, targetUserID)
	if search := args.Get(0); search != nil {
		return search.(*entities.Search), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockFavoritePlaces struct {
	mock.Mock
}

func (m *MockFavoritePlaces) List(ctx context.Context, userID string) ([]*entities.FavoritePlace, error) {
	args := m.Called(ctx, userID)
	if places := args.Get(0); places != nil {
		return places.([]*entities.FavoritePlace), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFavoritePlaces) Get(ctx context.Context, userID, id string) (*entities.FavoritePlace, error) {
	args := m.Called(ctx, userID, id)
	if place := args.Get(0); place != nil {
		return place.(*entities.FavoritePlace), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFavoritePlaces) Create(ctx context.Context, userID string, place *entities.FavoritePlace) error {
	args := m.Called(ctx, userID, place)
	return args.Error(0)
}

func (m *MockFavoritePlaces) Update(ctx context.Context, userID, id string, place *entities.FavoritePlace) error {
	args := m.Called(ctx, userID, id, place)
	return args.Error(0)
}

func (m *MockFavoritePlaces) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockFavoritePlaces) Search(ctx context.Context, userID, query string, limit int) ([]*entities.FavoritePlace, error) {
	args := m.Called(ctx, userID, query, limit)
	if places := args.Get(0); places != nil {
		return places.([]*entities.FavoritePlace), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBookings struct {
	mock.Mock
}

func (m *MockBookings) List(ctx context.Context, userID string, limit, offset int) ([]*entities.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if bookings := args.Get(0); bookings != nil {
		return bookings.([]*entities.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookings) Create(ctx context.Context, userID string, booking *entities.Booking) error {
	args := m.Called(ctx, userID, booking)
	return args.Error(0)
}

// MockEventBus fans published events out to in-process subscribers
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.SearchEvent
	published   []*entities.SearchEvent
	subscribed  chan string
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.SearchEvent),
		subscribed:  make(chan string, 10),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, event *entities.SearchEvent) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	var channels []chan *entities.SearchEvent
	for _, name := range providers.ChannelsFor(event) {
		channels = append(channels, m.subscribers[name]...)
	}
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	m.mu.Lock()
	ch := make(chan *entities.SearchEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	m.mu.Unlock()

	m.subscribed <- channel
	return ch, nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	subs := m.subscribers
	m.subscribers = make(map[string][]chan *entities.SearchEvent)
	m.mu.Unlock()
	for _, channels := range subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	return nil
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithCaller(r.Context(), entities.Caller{UserID: userID}))
}
