package tickcache

import (
	"time"

	"go.uber.org/zap"
)

/*
Option configures a Cache at construction time.

DESIGN PATTERN

This is the teacher's functional options pattern (options.go), generalized
from a single WithCleanupInterval knob to the full constructor surface
spec.md §4.4 names: max_entries is a required New() parameter, everything
else is an Option with the spec's documented default.

	c, err := New[string, int](1000,
		WithTickInterval[string, int](50*time.Millisecond),
		WithWheelSize[string, int](4096),
		WithBudgetPerTick[string, int](200_000),
	)

Each Option mutates the constructor's config before the Cache and its
arena/wheel are constructed.
*/
type Option[K comparable, V any] func(*config[K, V])

// config collects every constructor parameter before New assembles the
// arena, LRU list, and wheel around it. Kept separate from Cache so
// options can run before any of those exist.
type config[K comparable, V any] struct {
	initialCap        int
	tickInterval      time.Duration
	wheelSize         uint32
	budgetPerTick     int
	updateTTLOnGet    bool
	passiveExpiration bool
	onDispose         func(key K, value V, reason DisposalReason)
	clock             Clock
	logger            *zap.Logger
}

func defaultConfig[K comparable, V any]() config[K, V] {
	return config[K, V]{
		tickInterval:      50 * time.Millisecond,
		wheelSize:         4096,
		budgetPerTick:     200_000,
		updateTTLOnGet:    false,
		passiveExpiration: true,
		clock:             NewSystemClock(),
		logger:            zap.NewNop(),
	}
}

// WithInitialCap sets the arena's starting column length. Defaults to
// min(1024, max_entries).
func WithInitialCap[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) { c.initialCap = n }
}

// WithTickInterval sets the wall-clock duration of one tick. Default 50ms.
func WithTickInterval[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *config[K, V]) { c.tickInterval = d }
}

// WithWheelSize sets the number of wheel buckets; must be a power of two
// >= 2. Default 4096.
func WithWheelSize[K comparable, V any](n uint32) Option[K, V] {
	return func(c *config[K, V]) { c.wheelSize = n }
}

// WithBudgetPerTick bounds the total work one Advance* call may perform
// across all the ticks it steps. Default 200,000.
func WithBudgetPerTick[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) { c.budgetPerTick = n }
}

// WithUpdateTTLOnGet enables sliding expiration: a successful Get
// reschedules the entry's TTL from now. Default false.
func WithUpdateTTLOnGet[K comparable, V any](enabled bool) Option[K, V] {
	return func(c *config[K, V]) { c.updateTTLOnGet = enabled }
}

// WithPassiveExpiration toggles the background periodic advancer
// (§6). When false, user operations trigger advance_to_now at entry
// instead. Default true.
func WithPassiveExpiration[K comparable, V any](enabled bool) Option[K, V] {
	return func(c *config[K, V]) { c.passiveExpiration = enabled }
}

// WithDisposeFunc registers the disposal callback (§6): invoked
// synchronously, exactly once per removal, before the slot is freed.
func WithDisposeFunc[K comparable, V any](fn func(key K, value V, reason DisposalReason)) Option[K, V] {
	return func(c *config[K, V]) { c.onDispose = fn }
}

// WithClock overrides the time source. Tests substitute a FakeClock.
func WithClock[K comparable, V any](clock Clock) Option[K, V] {
	return func(c *config[K, V]) { c.clock = clock }
}

// WithLogger attaches a zap.Logger. Defaults to zap.NewNop().
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return func(c *config[K, V]) { c.logger = logger }
}
