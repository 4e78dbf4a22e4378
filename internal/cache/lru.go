// Package cache provides the bounded, thread-safe caches used for resolved
// models, meshes, decoded textures and rendered icons.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Stats holds cache statistics.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
}

// LRU is a bounded least-recently-used cache safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *lru.Cache
	capacity int

	// Stats
	hits      uint64
	misses    uint64
	evictions uint64
}

// NewLRU creates a cache holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	c := &LRU[K, V]{capacity: capacity}
	c.reset()
	return c
}

// reset must be called with mu held (or before the cache is shared).
func (c *LRU[K, V]) reset() {
	c.lru = lru.New(c.capacity)
	c.lru.OnEvicted = func(lru.Key, interface{}) { c.evictions++ }
}

// Get retrieves an entry and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lru.Get(key); ok {
		c.hits++
		return v.(V), true
	}
	c.misses++
	var zero V
	return zero, false
}

// Add stores an entry, evicting the least recently used one when full.
func (c *LRU[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// GetOrCompute returns the cached value or computes and stores it. compute
// runs outside the lock; concurrent misses may compute the same value twice,
// so it must be deterministic. Results with ok=false are not cached.
func (c *LRU[K, V]) GetOrCompute(key K, compute func() (V, bool)) (V, bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}
	v, ok := compute()
	if ok {
		c.Add(key, v)
	}
	return v, ok
}

// Remove drops an entry.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every entry and resets statistics.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.lru.Len(),
		Capacity:  c.capacity,
	}
}
