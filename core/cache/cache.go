package cache

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Cache is a process-local, concurrency-safe lazy cache. Reads run under a
// shared lock, writes under an exclusive lock, and GetOrCompute guarantees
// that a producer for a given key runs at most once under concurrent
// first-access. Each Cache owns its backing store and key locks; independent
// instances share nothing.
//
// A Cache must be created with New; the zero value is not ready for use.
type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	store  Store[K, V]
	locks  keyLocker[K]
	logger *slog.Logger

	// Observability counters
	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
	failures atomic.Int64
}

// Stats provides observability counters for monitoring and debugging.
type Stats struct {
	Hits     int64 // Lookups that found a value
	Misses   int64 // Lookups that found nothing
	Computes int64 // Producer invocations
	Failures int64 // Producer invocations that returned an error
	Size     int   // Current number of entries
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithStore replaces the default LRU backing store. Use it to opt into
// strong-reference semantics (NewMapStore), a different capacity, or a
// custom Store implementation.
func WithStore[K comparable, V any](store Store[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		if store != nil {
			c.store = store
		}
	}
}

// WithShardedKeyLocks replaces the per-key lock registry with a fixed array
// of n mutexes selected by key hash. Unrelated keys mapping to the same
// mutex may contend during compute-on-miss, but no per-miss bookkeeping is
// done. A non-positive n falls back to DefaultKeyLockShards.
func WithShardedKeyLocks[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.locks = newShardedLocks[K](n)
	}
}

// WithLogger sets the logger for internal events. Compute activity is logged
// at debug level, producer failures at warn level.
func WithLogger[K comparable, V any](logger *slog.Logger) Option[K, V] {
	return func(c *Cache[K, V]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cache. Without options it uses an LRUStore of
// DefaultLRUCapacity and a reference-counted per-key lock registry.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		store:  MustNewLRUStore[K, V](DefaultLRUCapacity),
		locks:  newLockRegistry[K](),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the value stored under key, if any. It has no side effects
// beyond promoting the entry in a recency-tracking store.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.store.Get(key)
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// GetOrCompute returns the value stored under key, computing and storing it
// via producer on a miss. Concurrent callers for the same missing key block
// on a per-key lock while one of them runs the producer; a successful
// producer runs exactly once per miss episode and every caller receives its
// value. Unrelated keys never block each other.
//
// A producer error is returned wrapped in ErrProducerFailed and nothing is
// stored, so the key is not poisoned: the error is not cached, and the next
// caller (including ones already waiting) starts a fresh computation. The
// per-key lock is always released, even if the producer panics.
//
// The producer must be safe to call from any goroutine and should be
// idempotent-friendly, since it can run once per wave of concurrent callers
// when it keeps failing.
func (c *Cache[K, V]) GetOrCompute(key K, producer func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	var zero V
	if producer == nil {
		return zero, ErrNilProducer
	}

	unlock := c.locks.lock(key)
	defer unlock()

	// Double-check under the key lock: another caller may have stored the
	// value while this one was waiting.
	c.mu.RLock()
	v, ok := c.store.Get(key)
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v, nil
	}

	c.computes.Add(1)
	c.logger.Debug("computing value", slog.Any("key", key))

	v, err := producer()
	if err != nil {
		c.failures.Add(1)
		c.logger.Warn("producer failed",
			slog.Any("key", key),
			slog.Any("error", err))
		return zero, fmt.Errorf("%w: %w", ErrProducerFailed, err)
	}

	c.Put(key, v)
	return v, nil
}

// Put stores value under key, overwriting any previous value, and returns
// the stored value.
func (c *Cache[K, V]) Put(key K, value V) V {
	c.mu.Lock()
	c.store.Put(key, value)
	c.mu.Unlock()
	return value
}

// Remove deletes key and returns the removed value, if any.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Remove(key)
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Clear()
}

// Contains reports whether key is present without promoting the entry.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Contains(key)
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}

// Keys returns the keys currently present, in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, c.store.Len())
	for k := range c.store.All() {
		keys = append(keys, k)
	}
	return keys
}

// All returns a lazy, restartable sequence over the cache contents. Each
// invocation of the sequence takes a momentary read-locked snapshot and then
// yields without holding any lock, so results are weakly consistent under
// concurrent mutation: a snapshot, not a live view.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		c.mu.RLock()
		keys := make([]K, 0, c.store.Len())
		vals := make([]V, 0, c.store.Len())
		for k, v := range c.store.All() {
			keys = append(keys, k)
			vals = append(vals, v)
		}
		c.mu.RUnlock()

		for i, k := range keys {
			if !yield(k, vals[i]) {
				return
			}
		}
	}
}

// Stats returns current cache statistics. Safe to call at any time.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	size := c.store.Len()
	c.mu.RUnlock()

	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Computes: c.computes.Load(),
		Failures: c.failures.Load(),
		Size:     size,
	}
}
