package assets

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	details Details
	expires time.Time
}

// MemoryCache is an in-process Cache with a fixed TTL. A zero TTL keeps
// entries forever.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Details, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Details{}, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return Details{}, false, nil
	}
	return e.details, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, d Details) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{details: d}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
