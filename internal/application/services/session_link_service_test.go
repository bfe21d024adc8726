package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
)

func TestSessionLinkService_LinkAnonymousSearches(t *testing.T) {
	t.Run("links three searches then nothing on re-run", func(t *testing.T) {
		repo := new(MockSearchRepository)
		bus := new(MockEventBus)
		service := services.NewSessionLinkService(repo, bus)

		repo.On("LinkSession", mock.Anything, "sess-1", "user-1").Return(int64(3), nil).Once()
		repo.On("LinkSession", mock.Anything, "sess-1", "user-1").Return(int64(0), nil).Once()
		bus.On("Publish", mock.Anything, mock.MatchedBy(func(e *entities.SearchEvent) bool {
			return e.EventType == entities.SearchEventTypeLinked && e.Linked == 3 && e.UserID == "user-1"
		})).Return(nil)

		linked, err := service.LinkAnonymousSearches(context.Background(), "sess-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), linked)

		linked, err = service.LinkAnonymousSearches(context.Background(), "sess-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), linked)

		bus.AssertNumberOfCalls(t, "Publish", 1)
		repo.AssertExpectations(t)
	})

	t.Run("empty session key is a no-op", func(t *testing.T) {
		repo := new(MockSearchRepository)
		service := services.NewSessionLinkService(repo, nil)

		linked, err := service.LinkAnonymousSearches(context.Background(), "", "user-1")
		require.NoError(t, err)
		assert.Zero(t, linked)
		repo.AssertNotCalled(t, "LinkSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository failure is returned", func(t *testing.T) {
		repo := new(MockSearchRepository)
		service := services.NewSessionLinkService(repo, nil)
		repo.On("LinkSession", mock.Anything, "sess-1", "user-1").Return(int64(0), errors.New("db down"))

		_, err := service.LinkAnonymousSearches(context.Background(), "sess-1", "user-1")
		assert.Error(t, err)
	})
}

func TestSessionLinkService_OnAuthenticated(t *testing.T) {
	repo := new(MockSearchRepository)
	service := services.NewSessionLinkService(repo, nil)
	repo.On("LinkSession", mock.Anything, "sess-9", "user-9").Return(int64(2), nil)

	linked, err := service.OnAuthenticated(context.Background(), entities.Caller{UserID: "user-9", SessionKey: "sess-9"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), linked)

	linked, err = service.OnAuthenticated(context.Background(), entities.Caller{SessionKey: "sess-9"})
	require.NoError(t, err)
	assert.Zero(t, linked)
	repo.AssertNumberOfCalls(t, "LinkSession", 1)
}
