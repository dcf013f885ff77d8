// Package tickcache implements a fixed-capacity, generic in-memory
// cache combining per-entry TTL expiration with LRU eviction.
//
// Entries live in a structure-of-arrays arena (internal/arena) indexed
// by small integer slot ids rather than pointers, so growth never
// invalidates an id already handed out. Two intrusive structures are
// threaded through the arena's own columns: an LRU list
// (internal/lrulist) and a single-level hashed timer wheel with a flat
// overflow list (internal/wheel). Cache itself is the coordinator that
// keeps the key index, the arena, the LRU list, and the wheel
// consistent under one mutex.
//
// Expiration can run two ways, chosen with WithPassiveExpiration: a
// background ticker goroutine advances the wheel on its own schedule
// (the default), or each Set, Get and Has call advances it to the
// current tick before doing its own work. Either way, Get and Has additionally
// check an entry's expiry tick directly against the clock, so a stale
// read is never returned even if the wheel itself is lagging.
package tickcache
