package arena

import (
	"testing"

	"github.com/m-thenot/tick-cache/internal/errs"
	"github.com/m-thenot/tick-cache/internal/sentinel"
	"github.com/stretchr/testify/require"
)

func TestAllocIDReusesFreedSlots(t *testing.T) {
	a, err := New[string, int](4, Options{InitialCap: 2})
	require.NoError(t, err)

	id1, err := a.AllocID()
	require.NoError(t, err)
	require.NoError(t, a.SetEntry(id1, "a", 1))

	require.NoError(t, a.FreeID(id1))
	require.Equal(t, 1, a.FreeCount())

	id2, err := a.AllocID()
	require.NoError(t, err)
	require.Equal(t, id1, id2, "freed slot should be reused before growing")
	require.Equal(t, 0, a.FreeCount())
}

func TestAllocIDGrowsColumnsPreservingLiveData(t *testing.T) {
	a, err := New[string, int](8, Options{InitialCap: 1})
	require.NoError(t, err)

	ids := make([]int32, 0, 5)
	for i := 0; i < 5; i++ {
		id, err := a.AllocID()
		require.NoError(t, err)
		require.NoError(t, a.SetEntry(id, string(rune('a'+i)), i))
		ids = append(ids, id)
	}
	require.GreaterOrEqual(t, a.Cap(), 5)

	for i, id := range ids {
		require.True(t, a.Live(id))
		require.Equal(t, i, a.Value(id))
	}
}

func TestAllocIDReturnsNilWhenExhausted(t *testing.T) {
	a, err := New[string, int](2, Options{InitialCap: 2})
	require.NoError(t, err)

	_, err = a.AllocID()
	require.NoError(t, err)
	_, err = a.AllocID()
	require.NoError(t, err)

	id, err := a.AllocID()
	require.NoError(t, err)
	require.Equal(t, sentinel.NIL, id)
}

func TestFreeIDRejectsDoubleFree(t *testing.T) {
	a, err := New[string, int](4, Options{})
	require.NoError(t, err)

	id, err := a.AllocID()
	require.NoError(t, err)
	require.NoError(t, a.SetEntry(id, "a", 1))
	require.NoError(t, a.FreeID(id))

	err = a.FreeID(id)
	require.Error(t, err)
	require.IsType(t, errs.DoubleFree{}, err)
}

func TestResetSlotClearsAllColumns(t *testing.T) {
	a, err := New[string, int](4, Options{})
	require.NoError(t, err)

	id, err := a.AllocID()
	require.NoError(t, err)
	require.NoError(t, a.SetEntry(id, "a", 1))
	a.SetExpiresTick(id, 99)
	a.SetTTLMillis(id, 500)
	a.SetLRULink(id, 3, 4)
	a.SetWheelLink(id, 2, 5, 6)

	require.NoError(t, a.FreeID(id))

	id2, err := a.AllocID()
	require.NoError(t, err)
	require.Equal(t, id, id2)
	require.Equal(t, uint64(0), a.ExpiresTick(id2))
	require.Equal(t, uint32(0), a.TTLMillis(id2))
	require.Equal(t, sentinel.NIL, a.LRUNext(id2))
	require.Equal(t, sentinel.NIL, a.LRUPrev(id2))
	require.Equal(t, sentinel.BucketNone, a.WheelBucket(id2))
}

func TestSizeAllocatedAndLiveCountInvariant(t *testing.T) {
	a, err := New[string, int](10, Options{InitialCap: 2})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		id, err := a.AllocID()
		require.NoError(t, err)
		require.NoError(t, a.SetEntry(id, string(rune('a'+i)), i))
	}
	require.NoError(t, a.FreeID(0))

	require.Equal(t, a.SizeAllocated(), a.LiveCount()+a.FreeCount())
}
