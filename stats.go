package tickcache

import "sync/atomic"

// Stats tracks runtime performance metrics of the cache, generalizing
// the teacher's stats.go (Hits, Misses, Evictions) with the additional
// counters the wheel and arena now make observable.
//
// Unlike the teacher, whose Stats fields were plain uint64s protected by
// the cache-wide mutex, these counters are updated with sync/atomic: the
// metrics package's prometheus.Collector reads a Stats snapshot from a
// goroutine that does not hold the coordinator's lock.
type Stats struct {
	Hits         uint64
	Misses       uint64
	Sets         uint64
	Deletes      uint64
	Evictions    uint64 // capacity-triggered LRU evictions
	Expirations  uint64 // TTL-triggered removals, active or defensive
	GrowthEvents uint64
	Size         int // current live entry count, not an atomic counter
}

// statsCounters is the mutable, atomic-field home for Stats; Stats
// itself is the immutable snapshot handed back to callers.
type statsCounters struct {
	hits         atomic.Uint64
	misses       atomic.Uint64
	sets         atomic.Uint64
	deletes      atomic.Uint64
	evictions    atomic.Uint64
	expirations  atomic.Uint64
	growthEvents atomic.Uint64
}

func (c *statsCounters) snapshot() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Sets:         c.sets.Load(),
		Deletes:      c.deletes.Load(),
		Evictions:    c.evictions.Load(),
		Expirations:  c.expirations.Load(),
		GrowthEvents: c.growthEvents.Load(),
	}
}
