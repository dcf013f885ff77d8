// Package errs defines the contract-violation error kinds raised by the
// arena and timer wheel (spec §7). The coordinator keeps user input from
// reaching InvalidId, DoubleFree and ScheduleInPast. Two kinds do reach
// callers: tickcache.New returns InvalidArgument for a bad parameter,
// and Set returns a wrapped CapacityExhausted when LRU eviction still
// leaves no free slot. Tests assert against them directly.
package errs

import "github.com/pkg/errors"

// InvalidId is returned when a slot id falls outside [0, cap) or is
// otherwise not a value the arena ever handed out.
type InvalidId struct {
	ID int32
}

func (e InvalidId) Error() string {
	return errors.Errorf("invalid slot id %d", e.ID).Error()
}

// DoubleFree is returned when free_id is called on a slot whose key
// column is already absent.
type DoubleFree struct {
	ID int32
}

func (e DoubleFree) Error() string {
	return errors.Errorf("double free of slot id %d", e.ID).Error()
}

// CapacityExhausted is returned when arena growth cannot reach the
// requested capacity despite max_entries headroom, or when alloc_id has
// no room left to grow into.
type CapacityExhausted struct {
	Requested int
	Max       int
}

func (e CapacityExhausted) Error() string {
	return errors.Errorf("capacity exhausted: requested %d, max %d", e.Requested, e.Max).Error()
}

// ScheduleInPast is returned when the wheel is asked to schedule a slot
// at or before the current tick.
type ScheduleInPast struct {
	ExpireTick uint64
	NowTick    uint64
}

func (e ScheduleInPast) Error() string {
	return errors.Errorf("schedule in past: expire tick %d <= now tick %d", e.ExpireTick, e.NowTick).Error()
}

// InvalidArgument is returned by constructors when a parameter violates
// its positivity / power-of-two / range constraint.
type InvalidArgument struct {
	Field  string
	Reason string
}

func (e InvalidArgument) Error() string {
	return errors.Errorf("invalid argument %q: %s", e.Field, e.Reason).Error()
}

// Wrap annotates err with a stack trace at the raise site, matching the
// sentrie xerr style of wrapping typed error values with pkg/errors.
func Wrap(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
