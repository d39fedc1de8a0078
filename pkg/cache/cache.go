package cache

import (
	"sync"
	"time"
)

// Entry is one cached value with its fetch time, so expiry decisions are
// explicit rather than buried in the store.
type Entry struct {
	Key       string
	Value     interface{}
	FetchedAt time.Time
}

// TTLCache is a small in-process cache with a fixed TTL and an injected
// clock, so expiry is testable without sleeping.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

func NewTTLCache(ttl time.Duration) *TTLCache {
	return NewTTLCacheWithClock(ttl, time.Now)
}

func NewTTLCacheWithClock(ttl time.Duration, now func() time.Time) *TTLCache {
	return &TTLCache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.FetchedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the entry.
		if current, ok := c.entries[key]; ok && c.now().Sub(current.FetchedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.Value, true
}

func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = Entry{Key: key, Value: value, FetchedAt: c.now()}
	c.mu.Unlock()
}

func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
