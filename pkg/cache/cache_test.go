package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	current time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.current
}

func (f *fakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func TestTTLCache_GetSet(t *testing.T) {
	clock := &fakeClock{current: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
	c := NewTTLCacheWithClock(10*time.Minute, clock.Now)

	c.Set("feed:user:user-1", []string{"post-1", "post-2"})

	value, ok := c.Get("feed:user:user-1")
	assert.True(t, ok)
	assert.Equal(t, []string{"post-1", "post-2"}, value)
}

func TestTTLCache_Miss(t *testing.T) {
	c := NewTTLCache(10 * time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	clock := &fakeClock{current: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
	c := NewTTLCacheWithClock(10*time.Minute, clock.Now)

	c.Set("key", "value")

	clock.Advance(9 * time.Minute)
	_, ok := c.Get("key")
	assert.True(t, ok, "entry should survive inside the TTL")

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("key")
	assert.False(t, ok, "entry should expire after the TTL")
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted")
}

func TestTTLCache_SetRefreshesFetchedAt(t *testing.T) {
	clock := &fakeClock{current: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
	c := NewTTLCacheWithClock(10*time.Minute, clock.Now)

	c.Set("key", "v1")
	clock.Advance(9 * time.Minute)
	c.Set("key", "v2")
	clock.Advance(9 * time.Minute)

	value, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "v2", value)
}

func TestTTLCache_Delete(t *testing.T) {
	c := NewTTLCache(time.Minute)
	c.Set("key", "value")
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}
