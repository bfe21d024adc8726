package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/somos/attraction/backend/pkg/config"
	"github.com/somos/attraction/backend/pkg/retry"
)

// Redis is optional for the API, so startup gives it a shorter budget than
// Postgres before carrying on without it.
var startupPolicy = retry.Policy{
	Attempts:  5,
	BaseDelay: 100 * time.Millisecond,
	MaxDelay:  2 * time.Second,
	Budget:    10 * time.Second,
}

// Client holds the connection shared by the feedback limiter and the event bus.
type Client struct {
	rdb *redis.Client
}

func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := retry.Connect(ctx, startupPolicy, "redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.DB).Msg("connected to Redis")
	return &Client{rdb: rdb}, nil
}

// NewClientFromRedis wraps an existing go-redis client, such as one pointed
// at miniredis in tests.
func NewClientFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Client() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
