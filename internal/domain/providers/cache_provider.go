package providers

import (
	"context"
	"time"
)

// CacheProvider is the shared counter and marker store behind the feedback
// rate limit and duplicate check.
type CacheProvider interface {
	// SetIfAbsent stores value under key for ttl unless the key exists and
	// reports whether it stored it.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Increment bumps the counter at key. A new counter expires after
	// window; later increments keep the first expiry, which is returned
	// alongside the new count.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)

	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}
