// Package arena implements the entry arena described in spec.md §4.1: a
// growable, structure-of-arrays pool of numeric slot ids. Each slot holds
// one entry's key, value, TTL/expiry bookkeeping, and the intrusive link
// columns the LRU list and timer wheel thread through it.
//
// Columns are plain Go slices rather than a pointer graph, per the design
// note in spec.md §9: slot ids stay valid across growth, only the backing
// arrays move.
package arena

import (
	"github.com/m-thenot/tick-cache/internal/errs"
	"github.com/m-thenot/tick-cache/internal/sentinel"
)

// Arena is a growable pool of entries laid out as structure-of-arrays.
// K must be comparable so it can double as a map key in the coordinator's
// key index; V is unconstrained.
type Arena[K comparable, V any] struct {
	maxEntries    int
	cap           int
	sizeAllocated int
	freeList      []int32

	live        []bool
	key         []K
	value       []V
	expiresTick []uint64
	ttlMS       []uint32

	wheelNext   []int32
	wheelPrev   []int32
	wheelBucket []int32

	lruNext []int32
	lruPrev []int32
}

// Options configures New.
type Options struct {
	// InitialCap is the starting column length. Defaults to
	// min(1024, maxEntries) when zero.
	InitialCap int
}

// New constructs an arena with room for at most maxEntries live slots.
func New[K comparable, V any](maxEntries int, opts Options) (*Arena[K, V], error) {
	if maxEntries <= 0 {
		return nil, errs.InvalidArgument{Field: "max_entries", Reason: "must be positive"}
	}
	initialCap := opts.InitialCap
	if initialCap <= 0 {
		initialCap = 1024
		if maxEntries < initialCap {
			initialCap = maxEntries
		}
	}
	if initialCap > maxEntries {
		return nil, errs.InvalidArgument{Field: "initial_cap", Reason: "must be <= max_entries"}
	}

	a := &Arena[K, V]{
		maxEntries: maxEntries,
	}
	a.growColumnsTo(initialCap)
	return a, nil
}

// Cap returns the current column length.
func (a *Arena[K, V]) Cap() int { return a.cap }

// MaxEntries returns the hard cap on live slots.
func (a *Arena[K, V]) MaxEntries() int { return a.maxEntries }

// SizeAllocated returns the high-water mark of ever-used ids.
func (a *Arena[K, V]) SizeAllocated() int { return a.sizeAllocated }

// FreeCount returns the number of ids currently sitting on the free list.
func (a *Arena[K, V]) FreeCount() int { return len(a.freeList) }

// LiveCount returns size_allocated - free_count (invariant P3/§3.3).
func (a *Arena[K, V]) LiveCount() int { return a.sizeAllocated - len(a.freeList) }

// InBounds reports whether id is a valid column index.
func (a *Arena[K, V]) InBounds(id int32) bool { return id >= 0 && int(id) < a.cap }

// Live reports whether id currently holds a live entry.
func (a *Arena[K, V]) Live(id int32) bool {
	return a.InBounds(id) && a.live[id]
}

// AllocID returns a reusable or freshly grown slot id, or NIL if the
// arena is at max_entries with an empty free list. A non-nil error here
// means arena growth itself failed (a bug, not ordinary exhaustion) —
// ordinary exhaustion is reported as (NIL, nil) per spec §4.1.
func (a *Arena[K, V]) AllocID() (int32, error) {
	if n := len(a.freeList); n > 0 {
		id := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.resetSlot(id)
		return id, nil
	}
	if a.sizeAllocated >= a.maxEntries {
		return sentinel.NIL, nil
	}
	id := a.sizeAllocated
	a.sizeAllocated++
	if id >= a.cap {
		newCap := a.cap * 2
		if newCap == 0 {
			newCap = 1
		}
		if newCap > a.maxEntries {
			newCap = a.maxEntries
		}
		for newCap < id+1 {
			grown := newCap * 2
			if grown > a.maxEntries {
				grown = a.maxEntries
			}
			if grown <= newCap {
				return sentinel.NIL, errs.CapacityExhausted{Requested: id + 1, Max: a.maxEntries}
			}
			newCap = grown
		}
		a.growColumnsTo(newCap)
	}
	a.resetSlot(int32(id))
	return int32(id), nil
}

// SetEntry writes the key/value columns for id and marks it live. The
// coordinator calls it right after AllocID in Set.
func (a *Arena[K, V]) SetEntry(id int32, key K, value V) error {
	if !a.InBounds(id) {
		return errs.InvalidId{ID: id}
	}
	a.key[id] = key
	a.value[id] = value
	a.live[id] = true
	return nil
}

// FreeID resets every column family for id and pushes it onto the free
// list. id must currently be live.
func (a *Arena[K, V]) FreeID(id int32) error {
	if !a.InBounds(id) {
		return errs.InvalidId{ID: id}
	}
	if !a.live[id] {
		return errs.DoubleFree{ID: id}
	}
	a.resetSlot(id)
	a.freeList = append(a.freeList, id)
	return nil
}

// resetSlot zeroes every column family for id to its neutral state:
// absent key/value, zero expiry/TTL, unlinked LRU and wheel pointers,
// BucketNone wheel membership. It does not touch the free list.
func (a *Arena[K, V]) resetSlot(id int32) {
	var zeroK K
	var zeroV V
	a.key[id] = zeroK
	a.value[id] = zeroV
	a.live[id] = false
	a.expiresTick[id] = 0
	a.ttlMS[id] = 0
	a.wheelNext[id] = sentinel.NIL
	a.wheelPrev[id] = sentinel.NIL
	a.wheelBucket[id] = sentinel.BucketNone
	a.lruNext[id] = sentinel.NIL
	a.lruPrev[id] = sentinel.NIL
}

// growColumnsTo reallocates every column to length newCap, preserving the
// prefix and initializing the suffix to neutral values. It never shrinks.
func (a *Arena[K, V]) growColumnsTo(newCap int) {
	if newCap <= a.cap {
		return
	}
	a.live = growBool(a.live, newCap)
	a.key = growGeneric(a.key, newCap)
	a.value = growGeneric(a.value, newCap)
	a.expiresTick = growUint64(a.expiresTick, newCap)
	a.ttlMS = growUint32(a.ttlMS, newCap)
	a.wheelNext = growInt32(a.wheelNext, newCap, sentinel.NIL)
	a.wheelPrev = growInt32(a.wheelPrev, newCap, sentinel.NIL)
	a.wheelBucket = growInt32(a.wheelBucket, newCap, sentinel.BucketNone)
	a.lruNext = growInt32(a.lruNext, newCap, sentinel.NIL)
	a.lruPrev = growInt32(a.lruPrev, newCap, sentinel.NIL)
	a.cap = newCap
}

func growGeneric[T any](s []T, newCap int) []T {
	out := make([]T, newCap)
	copy(out, s)
	return out
}

func growBool(s []bool, newCap int) []bool {
	out := make([]bool, newCap)
	copy(out, s)
	return out
}

func growUint64(s []uint64, newCap int) []uint64 {
	out := make([]uint64, newCap)
	copy(out, s)
	return out
}

func growUint32(s []uint32, newCap int) []uint32 {
	out := make([]uint32, newCap)
	copy(out, s)
	return out
}

func growInt32(s []int32, newCap int, neutral int32) []int32 {
	out := make([]int32, newCap)
	for i := range out {
		out[i] = neutral
	}
	copy(out, s)
	return out
}

// Key returns the key stored at id. Only meaningful when Live(id).
func (a *Arena[K, V]) Key(id int32) K { return a.key[id] }

// Value returns the value stored at id. Only meaningful when Live(id).
func (a *Arena[K, V]) Value(id int32) V { return a.value[id] }

// SetValue overwrites the value column without touching liveness, key,
// expiry, or link columns. Used by Set on an existing key.
func (a *Arena[K, V]) SetValue(id int32, value V) { a.value[id] = value }

// ExpiresTick returns the tick at which id's entry expires, or 0 if
// unset.
func (a *Arena[K, V]) ExpiresTick(id int32) uint64 { return a.expiresTick[id] }

// SetExpiresTick updates id's expiry tick.
func (a *Arena[K, V]) SetExpiresTick(id int32, t uint64) { a.expiresTick[id] = t }

// TTLMillis returns the original TTL, retained for sliding expiration.
func (a *Arena[K, V]) TTLMillis(id int32) uint32 { return a.ttlMS[id] }

// SetTTLMillis updates the retained TTL.
func (a *Arena[K, V]) SetTTLMillis(id int32, ms uint32) { a.ttlMS[id] = ms }

// LRUNext returns id's next pointer in the LRU list.
func (a *Arena[K, V]) LRUNext(id int32) int32 { return a.lruNext[id] }

// LRUPrev returns id's prev pointer in the LRU list.
func (a *Arena[K, V]) LRUPrev(id int32) int32 { return a.lruPrev[id] }

// SetLRULink sets both LRU pointers for id in one call.
func (a *Arena[K, V]) SetLRULink(id int32, prev, next int32) {
	a.lruPrev[id] = prev
	a.lruNext[id] = next
}

// WheelNext returns id's next pointer in its current wheel bucket or the
// overflow list.
func (a *Arena[K, V]) WheelNext(id int32) int32 { return a.wheelNext[id] }

// WheelPrev returns id's prev pointer in its current wheel bucket or the
// overflow list.
func (a *Arena[K, V]) WheelPrev(id int32) int32 { return a.wheelPrev[id] }

// WheelBucket returns id's wheel membership: a non-negative bucket index,
// sentinel.BucketOverflow, or sentinel.BucketNone.
func (a *Arena[K, V]) WheelBucket(id int32) int32 { return a.wheelBucket[id] }

// SetWheelLink sets the bucket membership and both wheel pointers for id
// in one call.
func (a *Arena[K, V]) SetWheelLink(id int32, bucket, prev, next int32) {
	a.wheelBucket[id] = bucket
	a.wheelPrev[id] = prev
	a.wheelNext[id] = next
}
