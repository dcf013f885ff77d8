// Package sentinel holds the reserved slot-id and bucket values shared by
// the arena, LRU list, and timer wheel. They must agree across all three
// components so that a wheel_bucket dispatch or an LRU pointer check means
// the same thing no matter which package is looking at it.
package sentinel

// SlotID identifies one entry in the arena, or NIL when absent.
type SlotID = int32

const (
	// NIL is the absent-slot-id sentinel, used by both the LRU list's
	// next/prev pointers and the wheel's next/prev pointers.
	NIL SlotID = -1

	// BucketNone marks a slot that is not currently linked into any wheel
	// bucket or the overflow list.
	BucketNone int32 = -1

	// BucketOverflow marks a slot linked into the wheel's overflow list
	// rather than a numbered bucket. Bucket indices are always
	// non-negative, so this cannot collide with a real bucket.
	BucketOverflow int32 = -2
)
