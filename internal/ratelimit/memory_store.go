package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements CounterStore in process memory. It is the
// fallback when REDIS_URL is not configured: correct for a single
// instance, but counters are not shared across instances and reset on
// restart.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	now       func() time.Time
	nextSweep time.Time
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// sweepInterval bounds how often expired windows are evicted. Distinct
// IP and email hashes arrive indefinitely, so without eviction the map
// grows without bound.
const sweepInterval = time.Minute

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

// Incr bumps the counter under a single lock, which makes the
// read-modify-write atomic per key.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	w, ok := s.windows[key]
	if !ok || !w.expiresAt.After(now) {
		w = &memoryWindow{expiresAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expiresAt.Sub(now), nil
}

// sweep drops expired windows at most once per sweepInterval. Caller
// holds the lock.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for key, w := range s.windows {
		if !w.expiresAt.After(now) {
			delete(s.windows, key)
		}
	}
	s.nextSweep = now.Add(sweepInterval)
}
