package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a small in-process cache for hot-path lookups whose source
// rows change rarely relative to webhook traffic. All entries share the TTL
// fixed at construction; expiry is checked lazily on read.
type TTLCache[K comparable, V any] struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[K]entry[V]
}

// New constructs a cache whose entries expire ttl after each Put. A
// non-positive ttl keeps entries until invalidated.
func New[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	cached, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !cached.expiresAt.IsZero() && time.Now().After(cached.expiresAt) {
		c.Invalidate(key)
		return zero, false
	}
	return cached.value, true
}

func (c *TTLCache[K, V]) Put(key K, value V) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Invalidate removes an entry before its TTL elapses, for callers that
// observe the source row change.
func (c *TTLCache[K, V]) Invalidate(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
