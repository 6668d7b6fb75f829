package cache

import (
	"context"
	"sync"
	"time"
)

// purgeEvery bounds how many writes may pass before expired entries are swept.
const purgeEvery = 256

// Entry represents a cached value with expiration
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// Cache is a simple in-memory string cache with TTL. It satisfies the
// summary cache contract and is used when no Redis URL is configured.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]*Entry
	now    func() time.Time
	writes int
}

// New creates a new cache
func New() *Cache {
	return &Cache{items: map[string]*Entry{}, now: time.Now}
}

// Set stores a value in the cache with a given TTL
func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &Entry{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.writes++
	if c.writes%purgeEvery == 0 {
		c.purgeLocked()
	}
	return nil
}

// Get retrieves a value from the cache if it hasn't expired
func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, exists := c.items[key]
	if !exists {
		return "", false, nil
	}
	if c.now().After(entry.ExpiresAt) {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked()
}

func (c *Cache) purgeLocked() int {
	now := c.now()
	removed := 0
	for key, entry := range c.items {
		if now.After(entry.ExpiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}
