package tickcache

import "time"

// Clock is the external time source from spec.md §6: a monotonic,
// non-decreasing source of milliseconds. Its shape follows the
// TimeProvider interface used in agilira-balios (other_examples), kept
// here under the teacher's own vocabulary (the teacher reached for
// time.Now() directly everywhere — item.go, janitor.go — this just gives
// that dependency a seam tests can substitute).
type Clock interface {
	// NowMillis returns monotonic milliseconds since some fixed but
	// unspecified epoch. Only differences between two calls are
	// meaningful.
	NowMillis() int64
}

// SystemClock is the real time source, backed by the Go runtime's
// monotonic clock reading (time.Since never strips monotonic readings
// the way wall-clock arithmetic on time.Now() subtraction can).
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock anchored to the moment it's created.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMillis implements Clock.
func (c *SystemClock) NowMillis() int64 {
	return time.Since(c.start).Milliseconds()
}

// FakeClock is an advance-on-demand time source for tests (spec.md §6:
// "Test doubles substitute an advance-on-demand source"), used by
// scenarios_test.go.
type FakeClock struct {
	millis int64
}

// NewFakeClock starts a fake clock at the given millisecond reading.
func NewFakeClock(startMillis int64) *FakeClock {
	return &FakeClock{millis: startMillis}
}

// NowMillis implements Clock.
func (c *FakeClock) NowMillis() int64 { return c.millis }

// Advance moves the fake clock forward by d, which must be non-negative.
func (c *FakeClock) Advance(d time.Duration) {
	c.millis += d.Milliseconds()
}

// Set moves the fake clock to an absolute millisecond reading.
func (c *FakeClock) Set(millis int64) { c.millis = millis }
