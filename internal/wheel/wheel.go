// Package wheel implements the single-level hashed timer wheel plus
// overflow list from spec.md §4.3: a circular array of bucket heads, one
// overflow head, all threaded through an arena's wheel_next/wheel_prev/
// wheel_bucket columns, advanced in discrete ticks under a per-advance
// work budget.
//
// The bucket/overflow/advance vocabulary follows yu31-timewheel (a
// hierarchical design); this wheel is intentionally single-level with a
// flat overflow list instead, per spec.md's non-goal on hierarchical
// wheels.
package wheel

import (
	"github.com/m-thenot/tick-cache/internal/errs"
	"github.com/m-thenot/tick-cache/internal/sentinel"
)

// Columns is the minimal arena surface the wheel needs.
type Columns interface {
	WheelNext(id int32) int32
	WheelPrev(id int32) int32
	WheelBucket(id int32) int32
	SetWheelLink(id int32, bucket, prev, next int32)
	ExpiresTick(id int32) uint64
	SetExpiresTick(id int32, t uint64)
}

// OnExpire is invoked once per expired slot id during an advance. The
// callback owns any arena/LRU cleanup; the wheel only unlinks id from
// itself before calling it.
type OnExpire func(id int32)

// Wheel is the timer wheel itself: bucket heads, overflow head, and the
// advance-in-progress bookkeeping. Per-slot link storage lives in the
// arena columns (Columns).
type Wheel struct {
	cols Columns

	size          uint32
	mask          uint32
	horizonTicks  uint64
	budgetPerTick int

	nowTick      uint64
	bucketHeads  []int32
	overflowHead int32

	overflowCountApprox int

	pendingTargetTick    uint64
	hasPendingTargetTick bool
}

// Options configures New.
type Options struct {
	// WheelSize is the number of buckets; must be a power of two >= 2.
	WheelSize uint32
	// BudgetPerTick bounds the total work done by one Advance* call,
	// across every tick it steps; must be positive.
	BudgetPerTick int
	// StartTick seeds now_tick (normally from the time source).
	StartTick uint64
}

// New constructs a wheel over the given arena columns.
func New(cols Columns, opts Options) (*Wheel, error) {
	if opts.WheelSize < 2 || opts.WheelSize&(opts.WheelSize-1) != 0 {
		return nil, errs.InvalidArgument{Field: "wheel_size", Reason: "must be a power of two >= 2"}
	}
	if opts.BudgetPerTick <= 0 {
		return nil, errs.InvalidArgument{Field: "budget_per_tick", Reason: "must be positive"}
	}
	w := &Wheel{
		cols:          cols,
		size:          opts.WheelSize,
		mask:          opts.WheelSize - 1,
		horizonTicks:  uint64(opts.WheelSize),
		budgetPerTick: opts.BudgetPerTick,
		nowTick:       opts.StartTick,
		bucketHeads:   make([]int32, opts.WheelSize),
		overflowHead:  sentinel.NIL,
	}
	for i := range w.bucketHeads {
		w.bucketHeads[i] = sentinel.NIL
	}
	return w, nil
}

// NowTick returns the tick the wheel has most recently stepped to. After
// an advance that ran out of budget, that tick's bucket may not have
// been fully processed.
func (w *Wheel) NowTick() uint64 { return w.nowTick }

// HorizonTicks returns the number of ticks the wheel represents directly.
func (w *Wheel) HorizonTicks() uint64 { return w.horizonTicks }

// OverflowCountApprox returns the wheel's (possibly under-counted, never
// negative) estimate of how many slots sit in the overflow list.
func (w *Wheel) OverflowCountApprox() int { return w.overflowCountApprox }

// PendingTargetTick returns the effective target of an interrupted
// advance, and whether one is pending.
func (w *Wheel) PendingTargetTick() (uint64, bool) {
	return w.pendingTargetTick, w.hasPendingTargetTick
}

// Schedule links id into the correct bucket or the overflow list for
// expireTick, first unlinking it from wherever it currently sits.
func (w *Wheel) Schedule(id int32, expireTick uint64) error {
	if expireTick <= w.nowTick {
		return errs.ScheduleInPast{ExpireTick: expireTick, NowTick: w.nowTick}
	}
	w.Unlink(id)
	w.cols.SetExpiresTick(id, expireTick)

	if expireTick-w.nowTick > w.horizonTicks {
		w.linkOverflowHead(id)
		w.overflowCountApprox++
		return nil
	}
	bucket := int32(uint32(expireTick) & w.mask)
	w.linkBucketHead(bucket, id)
	return nil
}

// Unlink removes id from whichever wheel state it's in (bucket,
// overflow, or none) and leaves it unscheduled.
func (w *Wheel) Unlink(id int32) {
	switch b := w.cols.WheelBucket(id); {
	case b == sentinel.BucketNone:
		return
	case b == sentinel.BucketOverflow:
		w.spliceOut(id, &w.overflowHead, nil)
		w.overflowCountApprox--
		if w.overflowCountApprox < 0 {
			w.overflowCountApprox = 0
		}
	default:
		w.spliceOut(id, nil, &w.bucketHeads[b])
	}
	w.cols.SetWheelLink(id, sentinel.BucketNone, sentinel.NIL, sentinel.NIL)
}

// spliceOut removes id from a list whose head is tracked either in
// overflowHeadPtr or bucketHeadPtr (exactly one is non-nil).
func (w *Wheel) spliceOut(id int32, overflowHeadPtr *int32, bucketHeadPtr *int32) {
	prev := w.cols.WheelPrev(id)
	next := w.cols.WheelNext(id)

	if prev != sentinel.NIL {
		w.cols.SetWheelLink(prev, w.cols.WheelBucket(prev), w.cols.WheelPrev(prev), next)
	} else if overflowHeadPtr != nil {
		*overflowHeadPtr = next
	} else {
		*bucketHeadPtr = next
	}

	if next != sentinel.NIL {
		w.cols.SetWheelLink(next, w.cols.WheelBucket(next), prev, w.cols.WheelNext(next))
	}
}

func (w *Wheel) linkOverflowHead(id int32) {
	oldHead := w.overflowHead
	w.cols.SetWheelLink(id, sentinel.BucketOverflow, sentinel.NIL, oldHead)
	if oldHead != sentinel.NIL {
		w.cols.SetWheelLink(oldHead, sentinel.BucketOverflow, id, w.cols.WheelNext(oldHead))
	}
	w.overflowHead = id
}

func (w *Wheel) linkBucketHead(bucket int32, id int32) {
	oldHead := w.bucketHeads[bucket]
	w.cols.SetWheelLink(id, bucket, sentinel.NIL, oldHead)
	if oldHead != sentinel.NIL {
		w.cols.SetWheelLink(oldHead, bucket, id, w.cols.WheelNext(oldHead))
	}
	w.bucketHeads[bucket] = id
}

// AdvanceToTick advances now_tick one tick at a time toward targetTick,
// draining overflow and processing each tick's bucket, until caught up
// or the per-call work budget (one counter shared by both phases of
// every tick step in the call) is exhausted. Returns true when fully
// caught up.
func (w *Wheel) AdvanceToTick(targetTick uint64, onExpire OnExpire) bool {
	effectiveTarget := targetTick
	if w.hasPendingTargetTick && w.pendingTargetTick > effectiveTarget {
		effectiveTarget = w.pendingTargetTick
	}

	remaining := w.budgetPerTick
	for w.nowTick < effectiveTarget {
		w.nowTick++

		spentOverflow, overflowDone := w.drainOverflow(remaining, onExpire)
		remaining -= spentOverflow
		if !overflowDone {
			w.pendingTargetTick = effectiveTarget
			w.hasPendingTargetTick = true
			return false
		}

		bucket := int32(uint32(w.nowTick) & w.mask)
		spentBucket, bucketDone := w.processBucket(bucket, remaining, onExpire)
		remaining -= spentBucket
		if !bucketDone {
			w.pendingTargetTick = effectiveTarget
			w.hasPendingTargetTick = true
			return false
		}
	}
	w.hasPendingTargetTick = false
	return true
}

// drainOverflow walks the overflow list from its head, bounded by
// remaining, re-homing slots that have entered the horizon and expiring
// those now due. Only moved-or-expired slots consume budget (spec.md §9
// permits either accounting policy). done is true iff the whole list was
// walked (no work left for this tick), false if it stopped early because
// the budget ran out while slots remained.
func (w *Wheel) drainOverflow(remaining int, onExpire OnExpire) (spent int, done bool) {
	cur := w.overflowHead
	for cur != sentinel.NIL && spent < remaining {
		next := w.cols.WheelNext(cur)
		expiresTick := w.cols.ExpiresTick(cur)
		delta := int64(expiresTick) - int64(w.nowTick)

		if delta <= int64(w.horizonTicks) {
			w.Unlink(cur)
			if expiresTick <= w.nowTick {
				onExpire(cur)
			} else {
				bucket := int32(uint32(expiresTick) & w.mask)
				w.linkBucketHead(bucket, cur)
			}
			spent++
		}
		cur = next
	}
	return spent, cur == sentinel.NIL
}

// processBucket walks the bucket list for the tick just stepped to,
// expiring due slots and relocating not-yet-due slots that landed here
// via wrap-around (the guardrail). Every visited slot consumes budget.
// done is true iff the whole bucket was walked this call.
func (w *Wheel) processBucket(bucket int32, remaining int, onExpire OnExpire) (spent int, done bool) {
	cur := w.bucketHeads[bucket]
	for cur != sentinel.NIL && spent < remaining {
		next := w.cols.WheelNext(cur)
		expiresTick := w.cols.ExpiresTick(cur)

		if expiresTick <= w.nowTick {
			w.Unlink(cur)
			onExpire(cur)
		} else {
			correct := int32(uint32(expiresTick) & w.mask)
			if correct != bucket {
				w.Unlink(cur)
				w.linkBucketHead(correct, cur)
			}
		}
		spent++
		cur = next
	}
	return spent, cur == sentinel.NIL
}
