package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	c.SetContent("hello-world", "rendered listing")
	got, ok := c.GetContent("hello-world")
	require.True(t, ok)
	assert.Equal(t, "rendered listing", got)

	_, ok = c.GetContent("other-post")
	assert.False(t, ok)
}

func TestMemoryCache_InvalidateContentIsPerSlug(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	c.SetContent("hello-world", "a")
	c.SetContent("other-post", "b")

	c.InvalidateContent(context.Background(), "hello-world")

	_, ok := c.GetContent("hello-world")
	assert.False(t, ok)
	_, ok = c.GetContent("other-post")
	assert.True(t, ok)
}

func TestMemoryCache_InvalidateQueue(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	c.SetQueue("queued page")

	c.InvalidateQueue(context.Background())

	_, ok := c.GetQueue()
	assert.False(t, ok)
}

func TestMemoryCache_EntriesExpire(t *testing.T) {
	c := NewMemoryCache(30 * time.Second)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.SetContent("hello-world", "a")
	_, ok := c.GetContent("hello-world")
	require.True(t, ok)

	current = current.Add(31 * time.Second)
	_, ok = c.GetContent("hello-world")
	assert.False(t, ok)
}
