package providers

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// EventBus carries search history events to live dashboards.
type EventBus interface {
	// Publish delivers event on every channel returned by ChannelsFor.
	Publish(ctx context.Context, event *entities.SearchEvent) error

	// Subscribe streams the events of one channel. The returned channel is
	// closed once ctx ends or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error)

	Close() error
}

// EventChannelSearches carries every search history event.
const EventChannelSearches = "searches:activity"

// EventChannelUserPrefix prefixes the per-user channels.
const EventChannelUserPrefix = "searches:user:"

func GetUserChannel(userID string) string {
	return EventChannelUserPrefix + userID
}

// ChannelsFor lists where an event is delivered: the global channel, plus
// the owner's channel when the event belongs to a user.
func ChannelsFor(event *entities.SearchEvent) []string {
	if event.UserID == "" {
		return []string{EventChannelSearches}
	}
	return []string{EventChannelSearches, GetUserChannel(event.UserID)}
}
