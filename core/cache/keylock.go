package cache

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"sync"
)

// keyLocker serializes compute-on-miss per key without blocking unrelated
// keys. lock blocks until the calling goroutine owns the key and returns the
// matching release func.
type keyLocker[K comparable] interface {
	lock(key K) (unlock func())
}

// lockRegistry hands out one mutex handle per in-flight key, created on
// first miss and dropped once the last holder releases it. Handles are
// reference counted so that a waiter blocked on a handle can never be
// stranded by the winner deleting the registry entry underneath it.
type lockRegistry[K comparable] struct {
	mu      sync.Mutex
	handles map[K]*keyHandle
}

type keyHandle struct {
	mu   sync.Mutex
	refs int
}

func newLockRegistry[K comparable]() *lockRegistry[K] {
	return &lockRegistry[K]{handles: make(map[K]*keyHandle)}
}

func (r *lockRegistry[K]) lock(key K) func() {
	r.mu.Lock()
	h, ok := r.handles[key]
	if !ok {
		h = &keyHandle{}
		r.handles[key] = h
	}
	h.refs++
	r.mu.Unlock()

	h.mu.Lock()

	return func() {
		h.mu.Unlock()
		r.mu.Lock()
		h.refs--
		if h.refs == 0 {
			delete(r.handles, key)
		}
		r.mu.Unlock()
	}
}

// inflight reports the number of keys with a live handle.
func (r *lockRegistry[K]) inflight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// DefaultKeyLockShards is the shard count WithShardedKeyLocks uses when the
// requested count is not positive.
const DefaultKeyLockShards = 16

// shardedLocks is the bookkeeping-free alternative to lockRegistry: a fixed
// array of mutexes selected by key hash. Two unrelated keys may share a
// mutex and contend, but nothing is ever allocated or cleaned up per miss.
type shardedLocks[K comparable] struct {
	seed maphash.Seed
	mus  []sync.Mutex
}

func newShardedLocks[K comparable](n int) *shardedLocks[K] {
	if n <= 0 {
		n = DefaultKeyLockShards
	}
	return &shardedLocks[K]{
		seed: maphash.MakeSeed(),
		mus:  make([]sync.Mutex, n),
	}
}

func (s *shardedLocks[K]) lock(key K) func() {
	mu := &s.mus[s.index(key)]
	mu.Lock()
	return mu.Unlock
}

// index returns the mutex index for the given key.
func (s *shardedLocks[K]) index(key K) int {
	var h maphash.Hash
	h.SetSeed(s.seed)

	// fast path for common key types, avoiding fmt.Sprint allocations
	var buf [8]byte
	switch k := any(key).(type) {
	case string:
		h.WriteString(k)
	case int:
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(k)))
		h.Write(buf[:])
	case int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		h.Write(buf[:])
	case int32:
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(k)))
		h.Write(buf[:])
	case uint:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		h.Write(buf[:])
	case uint64:
		binary.LittleEndian.PutUint64(buf[:], k)
		h.Write(buf[:])
	case uint32:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		h.Write(buf[:])
	default:
		h.WriteString(fmt.Sprint(key))
	}

	return int(h.Sum64() % uint64(len(s.mus)))
}
