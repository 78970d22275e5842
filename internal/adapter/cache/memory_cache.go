package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local TTL cache for rendered comment listings
// and the moderation queue. It implements ports.CacheSignal so the
// moderation engine can mark views stale after a confirmed write.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

const queueKey = "queue"

// NewMemoryCache creates a cache whose entries live at most ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetContent returns the cached comment listing for a slug, if fresh.
func (c *MemoryCache) GetContent(slug string) (interface{}, bool) {
	return c.get("comments:" + slug)
}

// SetContent caches the comment listing for a slug.
func (c *MemoryCache) SetContent(slug string, value interface{}) {
	c.set("comments:"+slug, value)
}

// GetQueue returns the cached moderation queue, if fresh.
func (c *MemoryCache) GetQueue() (interface{}, bool) {
	return c.get(queueKey)
}

// SetQueue caches the moderation queue.
func (c *MemoryCache) SetQueue(value interface{}) {
	c.set(queueKey, value)
}

// InvalidateContent marks cached views of a content page stale
func (c *MemoryCache) InvalidateContent(_ context.Context, slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, "comments:"+slug)
}

// InvalidateQueue marks the cached moderation list stale
func (c *MemoryCache) InvalidateQueue(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, queueKey)
}

func (c *MemoryCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}
