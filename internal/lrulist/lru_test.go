package lrulist

import (
	"testing"

	"github.com/m-thenot/tick-cache/internal/sentinel"
	"github.com/stretchr/testify/require"
)

// fakeColumns is a minimal in-memory Columns implementation for testing
// the list in isolation, without an arena.
type fakeColumns struct {
	next []int32
	prev []int32
}

func newFakeColumns(n int) *fakeColumns {
	f := &fakeColumns{next: make([]int32, n), prev: make([]int32, n)}
	for i := range f.next {
		f.next[i] = sentinel.NIL
		f.prev[i] = sentinel.NIL
	}
	return f
}

func (f *fakeColumns) LRUNext(id int32) int32 { return f.next[id] }
func (f *fakeColumns) LRUPrev(id int32) int32 { return f.prev[id] }
func (f *fakeColumns) SetLRULink(id int32, prev, next int32) {
	f.prev[id] = prev
	f.next[id] = next
}

func walkForward(l *List) []int32 {
	var out []int32
	for cur := l.Head(); cur != sentinel.NIL; cur = l.cols.LRUNext(cur) {
		out = append(out, cur)
	}
	return out
}

func walkBackward(l *List) []int32 {
	var out []int32
	for cur := l.Tail(); cur != sentinel.NIL; cur = l.cols.LRUPrev(cur) {
		out = append(out, cur)
	}
	return out
}

func TestLinkHeadOrdersMostRecentFirst(t *testing.T) {
	cols := newFakeColumns(3)
	l := New(cols)

	l.LinkHead(0)
	l.LinkHead(1)
	l.LinkHead(2)

	require.Equal(t, []int32{2, 1, 0}, walkForward(l))
	require.Equal(t, int32(2), l.Head())
	require.Equal(t, int32(0), l.Tail())
}

func TestUnlinkSplicesFromAnyPosition(t *testing.T) {
	cols := newFakeColumns(3)
	l := New(cols)
	l.LinkHead(0)
	l.LinkHead(1)
	l.LinkHead(2)

	l.Unlink(1) // middle
	require.Equal(t, []int32{2, 0}, walkForward(l))

	l.Unlink(2) // head
	require.Equal(t, []int32{0}, walkForward(l))
	require.Equal(t, int32(0), l.Head())
	require.Equal(t, int32(0), l.Tail())

	l.Unlink(0) // last remaining
	require.True(t, l.Empty())
	require.Equal(t, sentinel.NIL, l.Head())
	require.Equal(t, sentinel.NIL, l.Tail())
}

func TestTouchMovesExistingEntryToHead(t *testing.T) {
	cols := newFakeColumns(3)
	l := New(cols)
	l.LinkHead(0)
	l.LinkHead(1)
	l.LinkHead(2)

	l.Touch(0) // currently the tail
	require.Equal(t, []int32{0, 2, 1}, walkForward(l))

	l.Touch(0) // already head, no-op
	require.Equal(t, []int32{0, 2, 1}, walkForward(l))
}

func TestForwardAndBackwardWalksAreReverses(t *testing.T) {
	cols := newFakeColumns(5)
	l := New(cols)
	for i := int32(0); i < 5; i++ {
		l.LinkHead(i)
	}

	fwd := walkForward(l)
	back := walkBackward(l)
	require.Equal(t, len(fwd), len(back))
	for i := range fwd {
		require.Equal(t, fwd[i], back[len(back)-1-i])
	}
}
