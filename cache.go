package tickcache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/m-thenot/tick-cache/internal/arena"
	"github.com/m-thenot/tick-cache/internal/errs"
	"github.com/m-thenot/tick-cache/internal/lrulist"
	"github.com/m-thenot/tick-cache/internal/wheel"
)

// Cache is a fixed-capacity, generic key/value store combining TTL
// expiration and LRU eviction (spec.md §4.4). It generalizes the
// teacher's single *Cache (map[string]*list.Element, cache.go) into one
// generic over both key and value, backed by the entry arena instead of
// a list.List, with expiry driven by the timer wheel instead of a
// periodic deleteExpired sweep over the whole map.
//
// A Cache's exported methods all hold a single mutex for their
// duration, following the teacher's own choice of Lock() (not RLock())
// in Get: every successful Get also touches the LRU list, so there is
// no read-only path.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	arena *arena.Arena[K, V]
	lru   *lrulist.List
	wheel *wheel.Wheel

	keyIndex map[K]int32

	maxEntries        int
	tickMillis        int64
	updateTTLOnGet    bool
	passiveExpiration bool
	onDispose         func(key K, value V, reason DisposalReason)

	clock  Clock
	logger *zap.Logger

	stats statsCounters

	advancer *advancer
	closed   bool
}

// New constructs a Cache holding at most maxEntries live entries.
// maxEntries must be positive. See Option for the rest of the
// constructor surface and its defaults.
func New[K comparable, V any](maxEntries int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if maxEntries <= 0 {
		return nil, errs.InvalidArgument{Field: "max_entries", Reason: "must be positive"}
	}

	cfg := defaultConfig[K, V]()
	for _, opt := range opts {
		opt(&cfg)
	}

	tickMillis := cfg.tickInterval.Milliseconds()
	if tickMillis <= 0 {
		return nil, errs.InvalidArgument{Field: "tick_interval", Reason: "must be positive"}
	}

	a, err := arena.New[K, V](maxEntries, arena.Options{InitialCap: cfg.initialCap})
	if err != nil {
		return nil, err
	}

	c := &Cache[K, V]{
		arena:             a,
		keyIndex:          make(map[K]int32),
		maxEntries:        maxEntries,
		tickMillis:        tickMillis,
		updateTTLOnGet:    cfg.updateTTLOnGet,
		passiveExpiration: cfg.passiveExpiration,
		onDispose:         cfg.onDispose,
		clock:             cfg.clock,
		logger:            cfg.logger,
	}
	c.lru = lrulist.New(a)

	w, err := wheel.New(a, wheel.Options{
		WheelSize:     cfg.wheelSize,
		BudgetPerTick: cfg.budgetPerTick,
		StartTick:     c.nowTick(),
	})
	if err != nil {
		return nil, err
	}
	c.wheel = w

	if c.passiveExpiration {
		c.advancer = startAdvancer(c)
	}

	return c, nil
}

// nowTick is the coordinator's own view of the current tick, derived
// directly from the clock: floor(now_millis / tick_millis). It is
// always >= the wheel's own NowTick(), which only advances when an
// Advance* call runs, so Get and Has can detect expiry that the
// background advancer or an active-mode trigger hasn't caught up to
// yet (spec.md §8 scenario 6).
func (c *Cache[K, V]) nowTick() uint64 {
	ms := c.clock.NowMillis()
	if ms < 0 {
		ms = 0
	}
	return uint64(ms) / uint64(c.tickMillis)
}

// ticksFromMillis converts a TTL in milliseconds to a tick delta,
// flooring per spec.md §4.4 and clamping a zero result up to one tick
// so that a positive TTL can never schedule in the past (Open Question
// decision: see SPEC_FULL.md).
func (c *Cache[K, V]) ticksFromMillis(ms int64) uint64 {
	ticks := ms / c.tickMillis
	if ticks < 1 {
		ticks = 1
	}
	return uint64(ticks)
}

func clampTTLMillis(ms int64) uint32 {
	const maxUint32 = int64(1<<32 - 1)
	if ms > maxUint32 {
		return uint32(maxUint32)
	}
	return uint32(ms)
}

// onExpireLocked is the wheel's OnExpire callback. It assumes the
// caller already holds c.mu (true for every Advance* call site:
// maybeActiveAdvance and the background advancer both acquire the lock
// first), per spec.md §5's rule that callbacks must not reenter
// coordinator methods.
func (c *Cache[K, V]) onExpireLocked(id int32) {
	c.expireAndRemoveLocked(id, ReasonTTL)
	c.stats.expirations.Add(1)
}

// expireAndRemoveLocked runs the disposal callback, then removes id
// from the key index, wheel, LRU list, and arena, in that order. The
// caller must already hold c.mu and must account for the removal
// reason in its own stats counter.
func (c *Cache[K, V]) expireAndRemoveLocked(id int32, reason DisposalReason) {
	key := c.arena.Key(id)
	value := c.arena.Value(id)
	if c.onDispose != nil {
		c.onDispose(key, value, reason)
	}
	delete(c.keyIndex, key)
	c.wheel.Unlink(id)
	c.lru.Unlink(id)
	if err := c.arena.FreeID(id); err != nil {
		c.logger.Error("free id of live entry failed", zap.Int32("id", id), zap.Error(err))
	}
}

// maybeActiveAdvance drives the wheel forward to the current tick when
// passive (background) expiration is disabled, per spec.md §6: user
// operations trigger advance_to_now at entry instead of relying on the
// periodic advancer. The caller must already hold c.mu.
func (c *Cache[K, V]) maybeActiveAdvance() {
	if c.passiveExpiration {
		return
	}
	c.wheel.AdvanceToTick(c.nowTick(), c.onExpireLocked)
}

// evictLRULocked evicts the least recently used entry to make room for
// a new one. The caller must already hold c.mu. If the LRU list is
// empty it returns an error: with key_index.size >= max_entries and no
// LRU entry to evict, that indicates a corrupted invariant (spec.md §7)
// rather than ordinary capacity pressure.
func (c *Cache[K, V]) evictLRULocked() error {
	tail := c.lru.Tail()
	if tail < 0 {
		return errs.Wrap(errs.CapacityExhausted{Requested: c.maxEntries + 1, Max: c.maxEntries},
			"evict: LRU list empty with key index at capacity")
	}
	c.expireAndRemoveLocked(tail, ReasonLRU)
	c.stats.evictions.Add(1)
	return nil
}

// Set inserts or updates key with value, expiring in ttl. A ttl <= 0
// is a no-op: the cache is left unmodified and no error is returned
// (spec.md §4.4 — time.Duration cannot represent the spec's "not
// finite" case, only the <= 0 half of that guard applies here).
//
// When the cache is at max_entries and key is not already present, Set
// evicts the least recently used entry first. The only error Set can
// return is the (never expected in practice) case where that eviction
// still leaves no room: an unrecoverable invariant breach (spec.md §7),
// not an ordinary capacity condition.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ttlMS := ttl.Milliseconds()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.maybeActiveAdvance()

	ticks := c.ticksFromMillis(ttlMS)
	expireTick := c.nowTick() + ticks

	if id, found := c.keyIndex[key]; found {
		c.arena.SetValue(id, value)
		c.arena.SetTTLMillis(id, clampTTLMillis(ttlMS))
		if err := c.wheel.Schedule(id, expireTick); err != nil {
			return errs.Wrap(err, "reschedule existing key")
		}
		c.lru.Touch(id)
		c.stats.sets.Add(1)
		return nil
	}

	for len(c.keyIndex) >= c.maxEntries {
		if err := c.evictLRULocked(); err != nil {
			return err
		}
	}

	capBefore := c.arena.Cap()
	id, err := c.arena.AllocID()
	if err != nil {
		return errs.Wrap(err, "alloc id for new key")
	}
	if id < 0 {
		return errs.Wrap(errs.CapacityExhausted{Requested: c.maxEntries + 1, Max: c.maxEntries},
			"alloc id returned NIL after LRU eviction")
	}
	if c.arena.Cap() > capBefore {
		c.stats.growthEvents.Add(1)
		c.logger.Debug("arena grew", zap.Int("new_cap", c.arena.Cap()))
	}

	if err := c.arena.SetEntry(id, key, value); err != nil {
		return errs.Wrap(err, "set entry for new key")
	}
	c.arena.SetTTLMillis(id, clampTTLMillis(ttlMS))
	if err := c.wheel.Schedule(id, expireTick); err != nil {
		return errs.Wrap(err, "schedule new key")
	}
	c.lru.LinkHead(id)
	c.keyIndex[key] = id
	c.stats.sets.Add(1)
	return nil
}

// Get returns key's value and true, or the zero value and false if
// absent or expired. A successful Get moves key to the front of the
// LRU list and, with WithUpdateTTLOnGet enabled, reschedules its expiry
// from now using its original TTL (sliding expiration).
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return zero, false
	}
	c.maybeActiveAdvance()

	id, found := c.keyIndex[key]
	if !found {
		c.stats.misses.Add(1)
		return zero, false
	}
	if c.arena.ExpiresTick(id) <= c.nowTick() {
		c.expireAndRemoveLocked(id, ReasonTTL)
		c.stats.expirations.Add(1)
		c.stats.misses.Add(1)
		return zero, false
	}

	c.lru.Touch(id)
	if c.updateTTLOnGet {
		if ttlMS := c.arena.TTLMillis(id); ttlMS > 0 {
			ticks := c.ticksFromMillis(int64(ttlMS))
			_ = c.wheel.Schedule(id, c.nowTick()+ticks)
		}
	}
	c.stats.hits.Add(1)
	return c.arena.Value(id), true
}

// Has reports whether key is present and unexpired, without affecting
// LRU order or TTL.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.maybeActiveAdvance()

	id, found := c.keyIndex[key]
	if !found {
		return false
	}
	if c.arena.ExpiresTick(id) <= c.nowTick() {
		c.expireAndRemoveLocked(id, ReasonTTL)
		c.stats.expirations.Add(1)
		return false
	}
	return true
}

// Delete removes key if present, reporting whether it was. The
// disposal callback, if any, runs with ReasonDelete.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	id, found := c.keyIndex[key]
	if !found {
		return false
	}
	c.expireAndRemoveLocked(id, ReasonDelete)
	c.stats.deletes.Add(1)
	return true
}

// Clear removes every entry. The disposal callback, if any, runs once
// per entry with ReasonClear. Stats counters are cumulative and are
// not reset by Clear.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	for key, id := range c.keyIndex {
		value := c.arena.Value(id)
		if c.onDispose != nil {
			c.onDispose(key, value, ReasonClear)
		}
		c.wheel.Unlink(id)
		if err := c.arena.FreeID(id); err != nil {
			c.logger.Error("free id during clear failed", zap.Int32("id", id), zap.Error(err))
		}
	}
	c.keyIndex = make(map[K]int32)
	c.lru.Reset()
}

// Size returns the current number of live entries.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keyIndex)
}

// Stats returns a snapshot of the cache's cumulative counters plus the
// current size.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	size := len(c.keyIndex)
	c.mu.Unlock()

	s := c.stats.snapshot()
	s.Size = size
	return s
}

// Close stops the background advancer, if one is running. It is safe
// to call more than once. After Close, the cache's exported methods
// remain safe to call: Get/Has report absent, Delete reports false,
// Set/Clear are no-ops, and Size/Stats still count the entries held
// when Close ran.
func (c *Cache[K, V]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	adv := c.advancer
	c.mu.Unlock()

	if adv != nil {
		adv.Stop()
	}
	return nil
}
