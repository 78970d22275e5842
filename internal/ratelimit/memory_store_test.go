package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Expired windows must be evicted eventually; the store sees an
// unbounded stream of distinct IP and email hashes.
func TestMemoryStore_SweepsExpiredWindows(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	for _, key := range []string{"ip:a", "ip:b", "ip:c"} {
		_, _, err := store.Incr(ctx, key, time.Minute)
		assert.NoError(t, err)
	}
	assert.Len(t, store.windows, 3)

	// All three windows expire; the next increment past the sweep
	// interval drops them.
	current = current.Add(2 * time.Minute)
	_, _, err := store.Incr(ctx, "ip:d", time.Minute)
	assert.NoError(t, err)
	assert.Len(t, store.windows, 1)
}

func TestMemoryStore_SweepKeepsLiveWindows(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	store.Incr(ctx, "ip:short", time.Minute)
	store.Incr(ctx, "ip:long", time.Hour)

	current = current.Add(2 * time.Minute)
	count, _, err := store.Incr(ctx, "ip:long", time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count, "a live window must keep its count across a sweep")
	assert.NotContains(t, store.windows, "ip:short")
}
