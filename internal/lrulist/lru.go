// Package lrulist implements the intrusive LRU list from spec.md §4.2:
// a doubly-linked list of slot ids threaded through an arena's lru_next
// / lru_prev columns, head = most recently used, tail = least recently
// used. The teacher's cache.go drove a container/list for this; here the
// links live in the arena's own columns instead, so no list.Element
// allocation happens per entry.
package lrulist

import "github.com/m-thenot/tick-cache/internal/sentinel"

// Columns is the minimal arena surface the LRU list needs. Defined here,
// consumer-side, so lrulist has no compile-time dependency on the arena
// package's concrete type.
type Columns interface {
	LRUNext(id int32) int32
	LRUPrev(id int32) int32
	SetLRULink(id int32, prev, next int32)
}

// List is the LRU list itself: just the two ends, all link storage lives
// in the arena columns.
type List struct {
	cols Columns
	head int32
	tail int32
}

// New builds an empty LRU list over the given arena columns.
func New(cols Columns) *List {
	return &List{cols: cols, head: sentinel.NIL, tail: sentinel.NIL}
}

// Head returns the most recently used slot id, or NIL if empty.
func (l *List) Head() int32 { return l.head }

// Tail returns the least recently used slot id, or NIL if empty.
func (l *List) Tail() int32 { return l.tail }

// Empty reports whether the list has no entries.
func (l *List) Empty() bool { return l.head == sentinel.NIL }

// LinkHead links id at the front of the list. The caller must ensure id
// is not already linked; LinkHead does not guard against relinking.
func (l *List) LinkHead(id int32) {
	oldHead := l.head
	l.cols.SetLRULink(id, sentinel.NIL, oldHead)
	if oldHead != sentinel.NIL {
		oldNext := l.cols.LRUNext(oldHead)
		l.cols.SetLRULink(oldHead, id, oldNext)
	} else {
		l.tail = id
	}
	l.head = id
}

// Unlink splices id out of the list, wherever it currently sits, and
// clears its LRU pointers.
func (l *List) Unlink(id int32) {
	prev := l.cols.LRUPrev(id)
	next := l.cols.LRUNext(id)

	if prev != sentinel.NIL {
		l.cols.SetLRULink(prev, l.cols.LRUPrev(prev), next)
	} else {
		l.head = next
	}
	if next != sentinel.NIL {
		l.cols.SetLRULink(next, prev, l.cols.LRUNext(next))
	} else {
		l.tail = prev
	}
	l.cols.SetLRULink(id, sentinel.NIL, sentinel.NIL)
}

// Touch moves id to the head if it isn't already there.
func (l *List) Touch(id int32) {
	if l.head == id {
		return
	}
	l.Unlink(id)
	l.LinkHead(id)
}

// Reset empties the list without touching per-slot columns; the arena's
// reset is the authoritative slot cleaner.
func (l *List) Reset() {
	l.head = sentinel.NIL
	l.tail = sentinel.NIL
}
