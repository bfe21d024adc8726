package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	redisclient "github.com/somos/attraction/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

var errBusClosed = errors.New("event bus is closed")

// hub is the Redis subscription of one channel and its local listeners.
type hub struct {
	pubsub    *redis.PubSub
	listeners map[chan *entities.SearchEvent]struct{}
}

// RedisEventBus distributes search events over Redis Pub/Sub so every API
// instance sees every event. Local listeners of a channel share one Redis
// subscription, which is dropped with its last listener.
type RedisEventBus struct {
	client *redisclient.Client

	mu     sync.Mutex
	hubs   map[string]*hub
	closed bool
}

func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return &RedisEventBus{
		client: client,
		hubs:   make(map[string]*hub),
	}
}

func (b *RedisEventBus) Publish(ctx context.Context, event *entities.SearchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channels := providers.ChannelsFor(event)
	_, err = b.client.Client().Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, channel := range channels {
			pipe.Publish(ctx, channel, payload)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}

	log.Debug().Strs("channels", channels).Str("event_id", event.ID).Str("event_type", string(event.EventType)).Msg("published event")
	return nil
}

func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, errBusClosed
	}
	h, ok := b.hubs[channel]
	if ok {
		listener := b.join(ctx, channel, h)
		b.mu.Unlock()
		return listener, nil
	}
	b.mu.Unlock()

	// The Redis round trip runs unlocked; another subscriber may install a
	// hub for the same channel meanwhile.
	pubsub, err := b.subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		_ = pubsub.Close()
		return nil, errBusClosed
	}
	if existing, ok := b.hubs[channel]; ok {
		_ = pubsub.Close()
		return b.join(ctx, channel, existing), nil
	}

	h = &hub{pubsub: pubsub, listeners: make(map[chan *entities.SearchEvent]struct{})}
	b.hubs[channel] = h
	go b.pump(channel, h)
	return b.join(ctx, channel, h), nil
}

// subscribe opens a Redis subscription and waits for its confirmation, so
// events published after Subscribe returns reach the listener.
func (b *RedisEventBus) subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	pubsub := b.client.Client().Subscribe(context.Background(), channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return pubsub, nil
}

// join adds a listener to h. Callers hold b.mu.
func (b *RedisEventBus) join(ctx context.Context, channel string, h *hub) chan *entities.SearchEvent {
	listener := make(chan *entities.SearchEvent, subscriberBuffer)
	h.listeners[listener] = struct{}{}

	go func() {
		<-ctx.Done()
		b.leave(channel, h, listener)
	}()
	return listener
}

// pump decodes the messages of one hub until its subscription closes.
func (b *RedisEventBus) pump(channel string, h *hub) {
	for msg := range h.pubsub.Channel() {
		var event entities.SearchEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("dropping malformed event")
			continue
		}

		b.mu.Lock()
		for listener := range h.listeners {
			select {
			case listener <- &event:
			default:
				log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("listener is lagging, event dropped")
			}
		}
		b.mu.Unlock()
	}
}

func (b *RedisEventBus) leave(channel string, h *hub, listener chan *entities.SearchEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := h.listeners[listener]; !ok {
		return
	}
	delete(h.listeners, listener)
	close(listener)

	if len(h.listeners) == 0 && b.hubs[channel] == h {
		delete(b.hubs, channel)
		if err := h.pubsub.Close(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
		}
	}
}

// Close ends every subscription and closes all listener channels.
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	var errs []error
	for channel, h := range b.hubs {
		for listener := range h.listeners {
			close(listener)
		}
		h.listeners = nil
		if err := h.pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", channel, err))
		}
		delete(b.hubs, channel)
	}
	return errors.Join(errs...)
}
