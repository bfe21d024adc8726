package entities

import (
	"time"

	"github.com/google/uuid"
)

// SearchEventType represents the type of search activity event
type SearchEventType string

const (
	SearchEventTypeRecorded SearchEventType = "search.recorded"
	SearchEventTypeLinked   SearchEventType = "searches.linked"
)

// SearchEvent is published on the event bus whenever search history changes.
type SearchEvent struct {
	ID        string          `json:"id"`
	EventType SearchEventType `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	SearchID  string          `json:"search_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Modes     string          `json:"modes,omitempty"`
	Linked    int64           `json:"linked,omitempty"`
}

// NewSearchRecordedEvent creates an event for a freshly stored search
func NewSearchRecordedEvent(search *Search) *SearchEvent {
	event := &SearchEvent{
		ID:        uuid.NewString(),
		EventType: SearchEventTypeRecorded,
		Timestamp: time.Now(),
		SearchID:  search.ID,
		Modes:     search.Modes,
	}
	if search.UserID != nil {
		event.UserID = *search.UserID
	}
	return event
}

// NewSearchesLinkedEvent creates an event for an anonymous session claimed by a user
func NewSearchesLinkedEvent(userID string, linked int64) *SearchEvent {
	return &SearchEvent{
		ID:        uuid.NewString(),
		EventType: SearchEventTypeLinked,
		Timestamp: time.Now(),
		UserID:    userID,
		Linked:    linked,
	}
}
