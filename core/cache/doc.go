// Package cache provides a process-local, concurrency-safe lazy cache with
// single-flight computation. It allows many concurrent readers and
// guarantees that an expensive value-producing computation for a given key
// runs at most once even under concurrent first-access.
//
// # Features
//
//   - Thread-safe operations with reader/writer locking
//   - Generic type parameters for compile-time type safety
//   - Single-flight compute-on-miss with per-key locks, so unrelated keys
//     never block each other
//   - Pluggable backing store (bounded LRU by default, plain map, or custom)
//   - Producer failures propagate to the caller and are never cached
//   - Observability counters for hits, misses, computes and failures
//
// # Usage
//
//	import "github.com/dai147444612/xiaoTools/core/cache"
//
//	c := cache.New[string, *User]()
//
//	// Store and retrieve values directly
//	c.Put("user:123", &User{ID: 123, Name: "John"})
//	if user, found := c.Get("user:123"); found {
//		fmt.Printf("Found user: %s\n", user.Name)
//	}
//
//	// Or compute on miss; concurrent callers for the same key share one
//	// producer run
//	user, err := c.GetOrCompute("user:456", func() (*User, error) {
//		return loadUserFromDB(456)
//	})
//	if err != nil {
//		// the producer's error, wrapped in cache.ErrProducerFailed
//	}
//
// # Single Flight
//
// GetOrCompute takes a per-key lock on a miss. The first caller runs the
// producer; callers that arrive while it runs block on the same lock, then
// re-check the store and return the freshly stored value without invoking
// their own producer. If the producer fails, nothing is stored and the
// waiting callers each retry with their own producer, so a transient failure
// never poisons a key:
//
//	v, err := c.GetOrCompute("report:2024", buildReport)
//	if errors.Is(err, cache.ErrProducerFailed) {
//		// buildReport failed; errors.Is also matches the original cause
//	}
//
// # Backing Stores
//
// By default the cache is backed by a bounded LRUStore of DefaultLRUCapacity
// entries, so growth is bounded without an explicit expiry policy. Automatic
// eviction is a policy choice of the default store, not a guarantee of when
// an entry disappears. Callers wanting strong-reference semantics opt into a
// MapStore explicitly:
//
//	c := cache.New(cache.WithStore[string, int](cache.NewMapStore[string, int]()))
//
// Any type implementing the Store interface can be supplied. Stores perform
// no locking of their own; the Cache synchronizes every access.
//
// # Iteration
//
// All returns a lazy, restartable sequence over the contents. Each
// invocation snapshots the entries under a momentary read lock and then
// yields without holding it, so iteration is weakly consistent under
// concurrent mutation:
//
//	for k, v := range c.All() {
//		fmt.Println(k, v)
//	}
//
// # Thread Safety
//
// All operations are safe for concurrent use from multiple goroutines
// without external synchronization. Writes are linearized by the cache's
// write lock: once Put or a successful GetOrCompute returns, the value is
// visible to every subsequent Get on any goroutine. A producer blocks only
// callers for its own key; there is no built-in timeout, so a stuck producer
// blocks that key's callers indefinitely.
package cache
