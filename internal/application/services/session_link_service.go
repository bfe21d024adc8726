package services

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
)

// SessionLinkService hands the searches of an anonymous session over to the
// user who signs in from it.
type SessionLinkService struct {
	searches repositories.SearchRepository
	events   providers.EventBus
}

// NewSessionLinkService creates a new session link service. events may be nil.
func NewSessionLinkService(searches repositories.SearchRepository, events providers.EventBus) *SessionLinkService {
	return &SessionLinkService{searches: searches, events: events}
}

// LinkAnonymousSearches assigns every search recorded under sessionKey to
// userID and clears the session key. It returns the number of searches
// linked; running it twice links nothing the second time.
func (s *SessionLinkService) LinkAnonymousSearches(ctx context.Context, sessionKey, userID string) (int64, error) {
	if sessionKey == "" || userID == "" {
		return 0, nil
	}

	ctx, span := observability.StartSpan(ctx, "SessionLinkService.LinkAnonymousSearches")
	defer span.End()

	linked, err := s.searches.LinkSession(ctx, sessionKey, userID)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	if linked > 0 {
		observability.ComponentLogger(ctx, "session_link").Info().
			Str("user_id", userID).
			Int64("linked", linked).
			Msg("linked anonymous searches")
		publishSearchEvent(ctx, s.events, entities.NewSearchesLinkedEvent(userID, linked))
	}
	return linked, nil
}

// OnAuthenticated is the sign-in hook. The identity collaborator calls it once
// a caller presenting an anonymous session has been authenticated.
func (s *SessionLinkService) OnAuthenticated(ctx context.Context, caller entities.Caller) (int64, error) {
	if !caller.Authenticated() {
		return 0, nil
	}
	return s.LinkAnonymousSearches(ctx, caller.SessionKey, caller.UserID)
}
