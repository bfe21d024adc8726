package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somos/attraction/backend/internal/adapters/cache"
	"github.com/somos/attraction/backend/internal/domain/providers"
	redisclient "github.com/somos/attraction/backend/internal/infrastructure/clients/redis"
)

func newAdapter(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisAdapter(redisclient.NewClientFromRedis(client)), mr
}

func TestRedisAdapter_SetIfAbsent(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	stored, err := adapter.SetIfAbsent(ctx, "feedback:dup:abc", []byte("1"), 10*time.Second)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = adapter.SetIfAbsent(ctx, "feedback:dup:abc", []byte("1"), 10*time.Second)
	require.NoError(t, err)
	assert.False(t, stored)

	mr.FastForward(11 * time.Second)

	stored, err = adapter.SetIfAbsent(ctx, "feedback:dup:abc", []byte("1"), 10*time.Second)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestRedisAdapter_IncrementKeepsFirstWindow(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	count, remaining, err := adapter.Increment(ctx, "feedback:rate:10.0.0.1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Hour, remaining)

	mr.FastForward(10 * time.Minute)

	count, remaining, err = adapter.Increment(ctx, "feedback:rate:10.0.0.1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 50*time.Minute, remaining)

	mr.FastForward(51 * time.Minute)

	count, _, err = adapter.Increment(ctx, "feedback:rate:10.0.0.1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "counter restarts once the window has passed")
}

func TestRedisAdapter_Unavailable(t *testing.T) {
	adapter, mr := newAdapter(t)
	mr.Close()

	_, _, err := adapter.Increment(context.Background(), "feedback:rate:10.0.0.1", time.Hour)
	assert.Error(t, err)

	_, err = adapter.SetIfAbsent(context.Background(), "feedback:dup:abc", []byte("1"), time.Hour)
	assert.Error(t, err)
}

func TestRedisAdapter_Delete(t *testing.T) {
	adapter, mr := newAdapter(t)
	ctx := context.Background()

	_, err := adapter.SetIfAbsent(ctx, "feedback:dup:abc", []byte("1"), time.Minute)
	require.NoError(t, err)

	require.NoError(t, adapter.Delete(ctx, "feedback:dup:abc"))
	assert.False(t, mr.Exists("feedback:dup:abc"))
	assert.NoError(t, adapter.Delete(ctx, "feedback:dup:missing"))
}
