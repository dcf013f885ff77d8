package tickcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// These tests transcribe the six concrete end-to-end scenarios
// verbatim; the overflow wrap-around and budget-partition scenarios
// are covered at the wheel level instead (internal/wheel/wheel_test.go)
// since they assert on the wheel's own "done"/"not done" return value,
// which Cache's public surface does not expose directly.

func TestScenarioLRUCorrectness(t *testing.T) {
	c, err := New[string, int](3, WithPassiveExpiration[string, int](false))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("a", 1, 10*time.Second))
	require.NoError(t, c.Set("b", 2, 10*time.Second))
	require.NoError(t, c.Set("c", 3, 10*time.Second))

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	require.NoError(t, c.Set("d", 4, 10*time.Second))

	v, ok = c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = c.Get("b")
	require.False(t, ok, "b should have been evicted as least recently used")

	v, ok = c.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)

	v, ok = c.Get("d")
	require.True(t, ok)
	require.Equal(t, 4, v)

	require.Equal(t, 3, c.Size())
}

func TestScenarioTTLExpirationWithFakeTime(t *testing.T) {
	clock := NewFakeClock(0)
	var disposals []DisposalReason
	c, err := New[string, int](16,
		WithClock[string, int](clock),
		WithTickInterval[string, int](50*time.Millisecond),
		WithWheelSize[string, int](4096),
		WithPassiveExpiration[string, int](false),
		WithDisposeFunc[string, int](func(_ string, _ int, reason DisposalReason) {
			disposals = append(disposals, reason)
		}),
	)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", 100, 150*time.Millisecond))

	clock.Set(200)
	_, ok := c.Get("k")
	require.False(t, ok)

	require.Len(t, disposals, 1)
	require.Equal(t, ReasonTTL, disposals[0])
}

func TestScenarioSlidingExpiration(t *testing.T) {
	clock := NewFakeClock(0)
	c, err := New[string, int](16,
		WithClock[string, int](clock),
		WithTickInterval[string, int](50*time.Millisecond),
		WithUpdateTTLOnGet[string, int](true),
		WithPassiveExpiration[string, int](false),
	)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", 1, 200*time.Millisecond))

	clock.Advance(100 * time.Millisecond)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 1, v)

	clock.Advance(120 * time.Millisecond)
	v, ok = c.Get("k")
	require.True(t, ok)
	require.Equal(t, 1, v)

	clock.Advance(220 * time.Millisecond)
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestScenarioDefensiveExpireOnRead(t *testing.T) {
	clock := NewFakeClock(0)
	c, err := New[string, int](16,
		WithClock[string, int](clock),
		WithTickInterval[string, int](50*time.Millisecond),
		WithPassiveExpiration[string, int](true),
	)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", 1, 150*time.Millisecond))

	clock.Set(200)
	_, ok := c.Get("k")
	require.False(t, ok, "get must detect expiry even though no advance ran")
	require.Equal(t, 0, c.Size())
}
