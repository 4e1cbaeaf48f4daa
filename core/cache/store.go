package cache

import (
	"iter"
	"maps"
)

// Store is the backing map abstraction that holds cache entries.
// Implementations perform no internal locking; the Cache facade owns all
// synchronization and guarantees that Put, Remove and Clear are never called
// concurrently with any other method.
//
// The package ships two implementations: MapStore (strong references, no
// eviction) and LRUStore (bounded, evicts the least recently used entry).
// Callers can supply their own implementation via WithStore.
type Store[K comparable, V any] interface {
	// Get returns the value stored under key and whether it was present.
	Get(key K) (V, bool)

	// Put stores value under key and returns the previous value, if any.
	Put(key K, value V) (prev V, had bool)

	// Contains reports whether key is present without counting as an access.
	Contains(key K) bool

	// Remove deletes key and returns the removed value, if any.
	Remove(key K) (prev V, had bool)

	// Clear removes all entries.
	Clear()

	// Len returns the number of entries currently stored.
	Len() int

	// All returns a sequence over the current entries in no particular order.
	All() iter.Seq2[K, V]
}

// MapStore is a plain map Store with strong references and no eviction.
// Entries stay until removed explicitly; use it when full control over the
// cache contents is desired.
type MapStore[K comparable, V any] struct {
	entries map[K]V
}

// NewMapStore creates an empty MapStore.
func NewMapStore[K comparable, V any]() *MapStore[K, V] {
	return &MapStore[K, V]{entries: make(map[K]V)}
}

// Get returns the value stored under key and whether it was present.
func (s *MapStore[K, V]) Get(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Put stores value under key and returns the previous value, if any.
func (s *MapStore[K, V]) Put(key K, value V) (V, bool) {
	prev, had := s.entries[key]
	s.entries[key] = value
	return prev, had
}

// Contains reports whether key is present.
func (s *MapStore[K, V]) Contains(key K) bool {
	_, ok := s.entries[key]
	return ok
}

// Remove deletes key and returns the removed value, if any.
func (s *MapStore[K, V]) Remove(key K) (V, bool) {
	prev, had := s.entries[key]
	if had {
		delete(s.entries, key)
	}
	return prev, had
}

// Clear removes all entries.
func (s *MapStore[K, V]) Clear() {
	clear(s.entries)
}

// Len returns the number of entries currently stored.
func (s *MapStore[K, V]) Len() int {
	return len(s.entries)
}

// All returns a sequence over the current entries in map order.
func (s *MapStore[K, V]) All() iter.Seq2[K, V] {
	return maps.All(s.entries)
}
