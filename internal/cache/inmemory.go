package cache

import (
	"context"
	"sync"
	"time"

	"github.com/oriys/polaris/internal/domain"
)

// InMemoryCache is the default in-process decision cache. It guards its map
// with its own RWMutex, not shared with the override store or any other
// component.
type InMemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]*memEntry
	closed  bool
}

type memEntry struct {
	decision  domain.Decision
	createdAt time.Time
}

// NewInMemoryCache creates a decision cache with the given TTL and periodic
// eviction of expired entries. Pass ttl <= 0 to use DefaultTTL.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &InMemoryCache{
		ttl:     ttl,
		entries: make(map[Key]*memEntry),
	}
	go c.evictLoop()
	return c
}

// TTL returns the configured freshness window.
func (c *InMemoryCache) TTL() time.Duration {
	return c.ttl
}

func (c *InMemoryCache) expired(e *memEntry) bool {
	return time.Since(e.createdAt) >= c.ttl
}

func (c *InMemoryCache) Get(_ context.Context, key Key) (domain.Decision, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.expired(entry) {
		return domain.Decision{}, false
	}
	return entry.decision, true
}

func (c *InMemoryCache) Put(_ context.Context, key Key, d domain.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.entries[key] = &memEntry{decision: d, createdAt: time.Now()}
}

func (c *InMemoryCache) Size(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*memEntry)
}

func (c *InMemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
	return nil
}

func (c *InMemoryCache) evictLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		for key, entry := range c.entries {
			if c.expired(entry) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
