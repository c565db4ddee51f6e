// Package cache provides a small in-memory TTL cache used to avoid
// re-reading aggregated document content on every quiz request.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the expiry applied by Set.
const DefaultTTL = 5 * time.Minute

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a concurrency-safe map with per-entry expiry. Expired
// entries are dropped lazily on read and swept periodically when a
// sweeper is started.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

// New creates a cache with the given TTL. A non-positive ttl falls back
// to DefaultTTL.
func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

// Get returns the value for key, reporting whether a live entry exists.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have
		// refreshed the entry meanwhile.
		if cur, ok := c.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate removes the entry for key, if any.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper launches a background goroutine that removes expired
// entries every interval until Stop is called.
func (c *Cache[T]) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the background sweeper. Safe to call more than once.
func (c *Cache[T]) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[T]) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
