package ratelimit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/obs"
)

// Result is the outcome of a limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// CounterStore is the externally owned counter backing the limiter. Incr
// must be atomic per key: two concurrent calls may never observe the same
// count. The returned ttl is the time left in the current window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Limiter enforces a rolling per-key request budget on top of a counter
// store. It holds no mutable state of its own, so it stays correct when
// several process instances share one store.
type Limiter struct {
	store  CounterStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter over the given counter store.
func NewLimiter(store CounterStore, logger *logrus.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Check consumes one slot for key and reports whether the caller may
// proceed. Callers run the guarded action only on Allowed; a denied check
// must have no side effect beyond the counter itself.
//
// Failure mode is fail-open: if the counter store errors, the request is
// allowed and the degradation is logged and counted. A broken redis must
// not take comment submission down with it.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) Result {
	count, ttl, err := l.store.Incr(ctx, key, window)
	if err != nil {
		obs.RateLimitStoreErrors.Inc()
		l.logger.WithContext(ctx).WithError(err).WithField("key", key).
			Warn("rate limit store unavailable, failing open")
		return Result{Allowed: true, Remaining: limit, ResetAt: l.now().Add(window)}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl),
	}
}
