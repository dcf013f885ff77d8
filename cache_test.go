package tickcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveMaxEntries(t *testing.T) {
	_, err := New[string, int](0)
	require.Error(t, err)

	_, err = New[string, int](-1)
	require.Error(t, err)
}

func TestSetTTLNonPositiveIsNoOp(t *testing.T) {
	c, err := New[string, int](4, WithPassiveExpiration[string, int](false))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", 1, 0))
	require.NoError(t, c.Set("k", 1, -time.Second))
	require.Equal(t, 0, c.Size())
	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestSetOverwritesExistingKeyAndTouchesLRU(t *testing.T) {
	c, err := New[string, int](2, WithPassiveExpiration[string, int](false))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", 1, time.Second))
	require.NoError(t, c.Set("b", 2, time.Second))
	require.NoError(t, c.Set("a", 100, time.Second)) // touches a, b becomes LRU tail

	require.NoError(t, c.Set("c", 3, time.Second)) // must evict b, not a

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 100, v)

	_, ok = c.Get("b")
	require.False(t, ok)

	v, ok = c.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestHasDoesNotAffectLRUOrder(t *testing.T) {
	c, err := New[string, int](2, WithPassiveExpiration[string, int](false))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", 1, time.Second))
	require.NoError(t, c.Set("b", 2, time.Second))

	require.True(t, c.Has("a")) // must NOT count as a use for eviction purposes
	require.NoError(t, c.Set("c", 3, time.Second))

	_, ok := c.Get("a")
	require.False(t, ok, "a should still be evicted: Has does not refresh recency")

	v, ok := c.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestDeleteRemovesEntryAndReportsPresence(t *testing.T) {
	c, err := New[string, int](4, WithPassiveExpiration[string, int](false))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", 1, time.Second))
	require.True(t, c.Delete("a"))
	require.False(t, c.Delete("a"), "second delete of the same key reports false")

	_, ok := c.Get("a")
	require.False(t, ok)
	require.False(t, c.Has("a"))
}

func TestClearIsIdempotentAndRunsDisposalOnceEach(t *testing.T) {
	var reasons []DisposalReason
	c, err := New[string, int](4,
		WithPassiveExpiration[string, int](false),
		WithDisposeFunc[string, int](func(_ string, _ int, reason DisposalReason) {
			reasons = append(reasons, reason)
		}),
	)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", 1, time.Second))
	require.NoError(t, c.Set("b", 2, time.Second))

	c.Clear()
	require.Equal(t, 0, c.Size())
	require.Len(t, reasons, 2)
	for _, r := range reasons {
		require.Equal(t, ReasonClear, r)
	}

	c.Clear() // idempotent: no further disposals
	require.Len(t, reasons, 2)
}

func TestStatsTracksCountersAndSize(t *testing.T) {
	c, err := New[string, int](4, WithPassiveExpiration[string, int](false))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", 1, time.Second))
	require.NoError(t, c.Set("b", 2, time.Second))
	_, _ = c.Get("a")
	_, _ = c.Get("missing")
	c.Delete("b")

	s := c.Stats()
	require.Equal(t, uint64(2), s.Sets)
	require.Equal(t, uint64(1), s.Hits)
	require.Equal(t, uint64(1), s.Misses)
	require.Equal(t, uint64(1), s.Deletes)
	require.Equal(t, 1, s.Size)
}

func TestCloseStopsBackgroundAdvancerAndIsIdempotent(t *testing.T) {
	c, err := New[string, int](4)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close()) // must not panic or block
}

func TestConcurrentAccessIsRaceFree(t *testing.T) {
	c, err := New[int, int](1000)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := (g*500 + i) % 200
				c.Set(key, i, 50*time.Millisecond)
				c.Get(key)
				c.Has(key)
			}
		}(g)
	}
	wg.Wait()
}
