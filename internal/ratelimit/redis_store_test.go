package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client), mr
}

func TestRedisStore_IncrCountsAndSetsWindow(t *testing.T) {
	store, mr := testRedisStore(t)
	ctx := context.Background()

	count, ttl, err := store.Incr(ctx, "comment:ip:abc", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl)

	count, ttl, err = store.Incr(ctx, "comment:ip:abc", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Greater(t, ttl, time.Duration(0))

	// The window is fixed from the first request, not renewed per hit.
	mr.FastForward(30 * time.Second)
	_, ttl, err = store.Incr(ctx, "comment:ip:abc", time.Minute)
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestRedisStore_WindowExpiryResetsCount(t *testing.T) {
	store, mr := testRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := store.Incr(ctx, "comment:slug:hello", time.Minute)
		require.NoError(t, err)
	}

	mr.FastForward(time.Minute + time.Second)

	count, _, err := store.Incr(ctx, "comment:slug:hello", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisStore_ErrorSurfaces(t *testing.T) {
	store, mr := testRedisStore(t)
	mr.Close()

	_, _, err := store.Incr(context.Background(), "comment:ip:abc", time.Minute)
	assert.Error(t, err)
}
