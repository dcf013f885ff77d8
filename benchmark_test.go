package tickcache

import (
	"strconv"
	"testing"
	"time"
)

// BenchmarkSet measures the write path: same key repeatedly overwritten,
// generalizing the teacher's BenchmarkSet (benchmark_test.go) from the
// flat map/list.List cache to the arena/wheel/LRU-list pipeline.
func BenchmarkSet(b *testing.B) {
	c, err := New[string, string](10_000)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	for i := 0; i < b.N; i++ {
		_ = c.Set("key", "value", 5*time.Second)
	}
}

// BenchmarkGet measures the read path on a warm, non-expiring entry.
func BenchmarkGet(b *testing.B) {
	c, err := New[string, string](10_000)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()
	_ = c.Set("key", "value", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}

// BenchmarkSetGetMix exercises unique keys under capacity pressure, so
// every Set beyond max_entries also pays for an LRU eviction.
func BenchmarkSetGetMix(b *testing.B) {
	const maxEntries = 1000
	c, err := New[string, string](maxEntries)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := strconv.Itoa(i % (maxEntries * 2))
		_ = c.Set(key, key, time.Second)
		c.Get(key)
	}
}
