package cache

import (
	"iter"
	"sync/atomic"
)

// DefaultLRUCapacity is the capacity of the LRUStore that New builds when no
// WithStore option is supplied.
const DefaultLRUCapacity = 1024

// EvictFunc is called when LRUStore discards its least recently used entry to
// make room for a new one. The callback runs while the owning Cache holds its
// write lock, so it must not call back into the Cache.
type EvictFunc[K comparable, V any] func(key K, value V)

// LRUStore is a bounded Store that evicts the least recently used entry when
// a Put would exceed its capacity. It is the default backing store so that
// cache growth stays bounded without an explicit expiry policy. Eviction is
// a policy choice, not a guarantee of when a given entry disappears.
//
// Recency is tracked with a per-entry atomic tick so that Get stays safe
// under the Cache's shared read lock. Eviction scans for the oldest tick,
// which costs O(n) once the store is full; acceptable for a default store,
// use a custom Store if that ever shows up in a profile.
//
// LRUStore performs no locking of its own; the Cache facade synchronizes it.
type LRUStore[K comparable, V any] struct {
	capacity int
	entries  map[K]*lruEntry[K, V]
	clock    atomic.Int64
	onEvict  EvictFunc[K, V]
}

type lruEntry[K comparable, V any] struct {
	key  K
	val  V
	tick atomic.Int64
}

// NewLRUStore creates an LRUStore with the given capacity.
// The capacity must be greater than zero.
func NewLRUStore[K comparable, V any](capacity int) (*LRUStore[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &LRUStore[K, V]{
		capacity: capacity,
		entries:  make(map[K]*lruEntry[K, V], capacity),
	}, nil
}

// MustNewLRUStore creates an LRUStore with the given capacity.
// It panics if the capacity is less than or equal to zero.
func MustNewLRUStore[K comparable, V any](capacity int) *LRUStore[K, V] {
	s, err := NewLRUStore[K, V](capacity)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns the value stored under key and marks the entry as most
// recently used.
func (s *LRUStore[K, V]) Get(key K) (V, bool) {
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.tick.Store(s.clock.Add(1))
	return e.val, true
}

// Put stores value under key and returns the previous value, if any.
// When the store is at capacity and key is new, the least recently used
// entry is evicted first.
func (s *LRUStore[K, V]) Put(key K, value V) (V, bool) {
	if e, ok := s.entries[key]; ok {
		prev := e.val
		e.val = value
		e.tick.Store(s.clock.Add(1))
		return prev, true
	}

	var zero V
	if len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	e := &lruEntry[K, V]{key: key, val: value}
	e.tick.Store(s.clock.Add(1))
	s.entries[key] = e
	return zero, false
}

// evictOldest removes the entry with the smallest access tick.
func (s *LRUStore[K, V]) evictOldest() {
	var oldest *lruEntry[K, V]
	var oldestTick int64
	for _, e := range s.entries {
		t := e.tick.Load()
		if oldest == nil || t < oldestTick {
			oldest = e
			oldestTick = t
		}
	}
	if oldest == nil {
		return
	}

	delete(s.entries, oldest.key)
	if s.onEvict != nil {
		s.onEvict(oldest.key, oldest.val)
	}
}

// Contains reports whether key is present without touching recency.
func (s *LRUStore[K, V]) Contains(key K) bool {
	_, ok := s.entries[key]
	return ok
}

// Remove deletes key and returns the removed value, if any.
// The eviction callback is not invoked for explicit removals.
func (s *LRUStore[K, V]) Remove(key K) (V, bool) {
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(s.entries, key)
	return e.val, true
}

// Clear removes all entries without invoking the eviction callback.
func (s *LRUStore[K, V]) Clear() {
	clear(s.entries)
}

// Len returns the number of entries currently stored.
func (s *LRUStore[K, V]) Len() int {
	return len(s.entries)
}

// All returns a sequence over the current entries in no particular order.
func (s *LRUStore[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, e := range s.entries {
			if !yield(k, e.val) {
				return
			}
		}
	}
}

// Capacity returns the maximum number of entries the store holds.
func (s *LRUStore[K, V]) Capacity() int {
	return s.capacity
}

// OnEvict sets a callback invoked with each entry discarded by capacity
// eviction. Set it before handing the store to a Cache.
func (s *LRUStore[K, V]) OnEvict(f EvictFunc[K, V]) {
	s.onEvict = f
}
