package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
)

// Mocks

type MockTripPlanner struct {
	mock.Mock
}

func (m *MockTripPlanner) FetchStops(ctx context.Context) ([]entities.Stop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Stop), args.Error(1)
}

func (m *MockTripPlanner) PlanTrip(ctx context.Context, query providers.PlanQuery) ([]entities.Itinerary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Itinerary), args.Error(1)
}

func (m *MockTripPlanner) FetchStopTimes(ctx context.Context, stopID string) (*entities.StopTimes, error) {
	args := m.Called(ctx, stopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.StopTimes), args.Error(1)
}

type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) Create(ctx context.Context, search *entities.Search) error {
	args := m.Called(ctx, search)
	return args.Error(0)
}

func (m *MockSearchRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Search, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Search), args.Error(1)
}

func (m *MockSearchRepository) LatestByUser(ctx context.Context, userID string) (*entities.Search, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Search), args.Error(1)
}

func (m *MockSearchRepository) LinkSession(ctx context.Context, sessionKey, userID string) (int64, error) {
	args := m.Called(ctx, sessionKey, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, event *entities.SearchEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	args := m.Called(ctx, channel)
	return args.Get(0).(<-chan *entities.SearchEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	return nil
}

type MockFavoritePlaceRepository struct {
	mock.Mock
}

func (m *MockFavoritePlaceRepository) Create(ctx context.Context, place *entities.FavoritePlace) error {
	return m.Called(ctx, place).Error(0)
}

func (m *MockFavoritePlaceRepository) GetByID(ctx context.Context, userID, id string) (*entities.FavoritePlace, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FavoritePlace), args.Error(1)
}

func (m *MockFavoritePlaceRepository) ListByUser(ctx context.Context, userID string) ([]*entities.FavoritePlace, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FavoritePlace), args.Error(1)
}

func (m *MockFavoritePlaceRepository) ListAll(ctx context.Context, limit, offset int) ([]*entities.FavoritePlace, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FavoritePlace), args.Error(1)
}

func (m *MockFavoritePlaceRepository) Update(ctx context.Context, place *entities.FavoritePlace) error {
	return m.Called(ctx, place).Error(0)
}

func (m *MockFavoritePlaceRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockFavoritePlaceRepository) ClearDefault(ctx context.Context, userID, exceptID string) error {
	return m.Called(ctx, userID, exceptID).Error(0)
}

type MockPlaceSearchRepository struct {
	mock.Mock
}

func (m *MockPlaceSearchRepository) Index(ctx context.Context, place *entities.FavoritePlace) error {
	return m.Called(ctx, place).Error(0)
}

func (m *MockPlaceSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPlaceSearchRepository) Search(ctx context.Context, userID, query string, limit int) ([]*entities.FavoritePlace, error) {
	args := m.Called(ctx, userID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FavoritePlace), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, feedback *entities.Feedback) error {
	return m.Called(ctx, feedback).Error(0)
}
