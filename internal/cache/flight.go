package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// FutureCache hands out one Future per key. Reserving the slot is atomic, so
// concurrent first requests for a key share a single computation. Completed
// futures are retained in a bounded LRU; pending ones are never evicted.
type FutureCache[K comparable, T any] struct {
	mu       sync.Mutex
	inflight map[K]*Future[T]
	done     *lru.Cache
	capacity int
	gen      uint64

	// Stats
	hits      uint64
	misses    uint64
	evictions uint64
}

// NewFutureCache creates a cache retaining at most capacity completed futures.
func NewFutureCache[K comparable, T any](capacity int) *FutureCache[K, T] {
	if capacity <= 0 {
		capacity = 1
	}
	c := &FutureCache[K, T]{capacity: capacity}
	c.reset()
	return c
}

func (c *FutureCache[K, T]) reset() {
	c.inflight = make(map[K]*Future[T])
	c.done = lru.New(c.capacity)
	c.done.OnEvicted = func(lru.Key, interface{}) { c.evictions++ }
	c.gen++
}

// Reserve returns the future for key. When the key was absent a new pending
// future is created and returned with a non-nil complete function that the
// caller must invoke exactly once with the result.
func (c *FutureCache[K, T]) Reserve(key K, placeholder T) (*Future[T], func(T, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.inflight[key]; ok {
		c.hits++
		return f, nil
	}
	if v, ok := c.done.Get(key); ok {
		c.hits++
		return v.(*Future[T]), nil
	}

	c.misses++
	f := NewFuture(placeholder)
	c.inflight[key] = f
	gen := c.gen

	complete := func(value T, err error) {
		c.mu.Lock()
		if c.gen == gen {
			delete(c.inflight, key)
			c.done.Add(key, f)
		}
		c.mu.Unlock()
		f.Complete(value, err)
	}
	return f, complete
}

// Peek returns the future for key without reserving a slot.
func (c *FutureCache[K, T]) Peek(key K) (*Future[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.inflight[key]; ok {
		return f, true
	}
	if v, ok := c.done.Get(key); ok {
		return v.(*Future[T]), true
	}
	return nil, false
}

// Len returns the number of retained completed futures.
func (c *FutureCache[K, T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done.Len()
}

// Pending returns the number of futures still in flight.
func (c *FutureCache[K, T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Clear forgets every future. Pending computations still complete their own
// futures but are no longer published to the cache.
func (c *FutureCache[K, T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// Stats returns cache statistics for completed futures.
func (c *FutureCache[K, T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.done.Len(),
		Capacity:  c.capacity,
	}
}
