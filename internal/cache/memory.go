package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	category  Category
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCache keeps entries in process. Expiry is checked lazily on read;
// DeleteExpired can be called periodically to bound memory.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttls    TTLs
	now     func() time.Time
}

func NewMemoryCache(ttls TTLs) *MemoryCache {
	if ttls == nil {
		ttls = DefaultTTLs()
	}
	return &MemoryCache{
		entries: make(map[string]entry),
		ttls:    ttls,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for expiry.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte, category Category) error {
	now := c.now()
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = entry{
		value:     stored,
		category:  category,
		createdAt: now,
		expiresAt: now.Add(c.ttls.For(category)),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeleteExpired drops every expired entry and returns how many were removed.
func (c *MemoryCache) DeleteExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
