package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockRegistry_CleanupAfterRelease(t *testing.T) {
	t.Parallel()

	r := newLockRegistry[string]()

	unlock := r.lock("a")
	assert.Equal(t, 1, r.inflight())

	unlock()
	assert.Equal(t, 0, r.inflight())
}

func TestLockRegistry_HandleSharedByWaiters(t *testing.T) {
	t.Parallel()

	r := newLockRegistry[string]()

	unlock := r.lock("a")

	const waiters = 4
	var wg sync.WaitGroup
	wg.Add(waiters)
	for range waiters {
		go func() {
			defer wg.Done()
			release := r.lock("a")
			release()
		}()
	}

	// waiters registered on the same handle keep the entry alive
	unlock()
	wg.Wait()

	assert.Equal(t, 0, r.inflight())
}

func TestLockRegistry_IndependentKeys(t *testing.T) {
	t.Parallel()

	r := newLockRegistry[string]()

	unlockA := r.lock("a")
	defer unlockA()

	// a held lock on one key must not block another key
	done := make(chan struct{})
	go func() {
		defer close(done)
		unlockB := r.lock("b")
		unlockB()
	}()
	<-done

	assert.Equal(t, 1, r.inflight())
}

func TestCache_RegistryEmptiesAfterCompute(t *testing.T) {
	t.Parallel()

	c := New[string, int]()
	reg, ok := c.locks.(*lockRegistry[string])
	require.True(t, ok, "default key locker is the registry")

	t.Run("after success", func(t *testing.T) {
		_, err := c.GetOrCompute("a", func() (int, error) { return 1, nil })
		require.NoError(t, err)
		assert.Equal(t, 0, reg.inflight())
	})

	t.Run("after failure", func(t *testing.T) {
		_, err := c.GetOrCompute("b", func() (int, error) { return 0, errors.New("boom") })
		require.Error(t, err)
		assert.Equal(t, 0, reg.inflight())
	})

	t.Run("after panic", func(t *testing.T) {
		require.Panics(t, func() {
			_, _ = c.GetOrCompute("c", func() (int, error) { panic("boom") })
		})
		assert.Equal(t, 0, reg.inflight())
	})
}

func TestShardedLocks_IndexStability(t *testing.T) {
	t.Parallel()

	s := newShardedLocks[string](8)

	// same key always maps to the same mutex
	for _, key := range []string{"a", "b", "some-longer-key"} {
		first := s.index(key)
		for range 10 {
			assert.Equal(t, first, s.index(key))
		}
	}
}

func TestShardedLocks_IntKeys(t *testing.T) {
	t.Parallel()

	s := newShardedLocks[int](4)

	for key := range 100 {
		idx := s.index(key)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
		assert.Equal(t, idx, s.index(key))
	}
}

func TestShardedLocks_DefaultCount(t *testing.T) {
	t.Parallel()

	s := newShardedLocks[string](0)
	assert.Len(t, s.mus, DefaultKeyLockShards)
}

func TestShardedLocks_MutualExclusion(t *testing.T) {
	t.Parallel()

	s := newShardedLocks[string](2)

	unlock := s.lock("a")

	acquired := make(chan struct{})
	go func() {
		release := s.lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second caller acquired a held key lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired
}
