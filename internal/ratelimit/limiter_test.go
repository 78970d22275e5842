package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type failingStore struct {
	calls int
}

func (f *failingStore) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	f.calls++
	return 0, 0, errors.New("store down")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestLimiter_DeniesAfterLimit(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store, quietLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := limiter.Check(ctx, "ip:abc", 3, time.Minute)
		assert.True(t, res.Allowed, "call %d within the limit must be allowed", i+1)
		assert.Equal(t, 3-(i+1), res.Remaining)
	}

	res := limiter.Check(ctx, "ip:abc", 3, time.Minute)
	assert.False(t, res.Allowed, "call limit+1 must be denied")
	assert.Equal(t, 0, res.Remaining)
	assert.False(t, res.ResetAt.IsZero())
}

func TestLimiter_IndependentKeys(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), quietLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		limiter.Check(ctx, "ip:abc", 2, time.Minute)
	}
	assert.False(t, limiter.Check(ctx, "ip:abc", 2, time.Minute).Allowed)
	assert.True(t, limiter.Check(ctx, "ip:other", 2, time.Minute).Allowed)
}

func TestLimiter_WindowElapses(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	limiter := NewLimiter(store, quietLogger())
	ctx := context.Background()

	limiter.Check(ctx, "ip:abc", 1, time.Minute)
	assert.False(t, limiter.Check(ctx, "ip:abc", 1, time.Minute).Allowed)

	current = current.Add(time.Minute + time.Second)
	assert.True(t, limiter.Check(ctx, "ip:abc", 1, time.Minute).Allowed,
		"a fresh window must allow again")
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	store := &failingStore{}
	limiter := NewLimiter(store, quietLogger())

	res := limiter.Check(context.Background(), "ip:abc", 1, time.Minute)
	assert.True(t, res.Allowed, "store failure must not block the request")
	assert.Equal(t, 1, store.calls)
}
