// Package geocache memoizes coordinate-service conversions and the AK
// contour classifier's tube-end-cut tracker behind an LRU, the same
// shape the pack's tree-sitter parse-tree cache uses (see DESIGN.md).
package geocache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCapacity = 4096

// Stats tracks basic cache counters, mirroring the pack's cache
// instrumentation convention.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache is a generic string-keyed LRU used for two unrelated purposes
// in this module: coordinate conversion memoization
// (normalize.Normalizer.convertPosition) and
// the tube-end-cut tracker (normalize's AK classifier). Both are small,
// string-keyed, value-typed lookups, so one generic wrapper serves
// both call sites.
type Cache[V any] struct {
	entries *lru.Cache[string, V]
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache with the given capacity, or defaultCapacity when
// capacity <= 0.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	c, _ := lru.New[string, V](capacity)
	return &Cache[V]{entries: c}
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores value under key, evicting the least-recently-used entry
// if the cache is at capacity.
func (c *Cache[V]) Put(key string, value V) {
	c.entries.Add(key, value)
}

// GetOrCompute returns the cached value for key, computing and storing
// it via fn on a miss.
func (c *Cache[V]) GetOrCompute(key string, fn func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := fn()
	c.Put(key, v)
	return v
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
