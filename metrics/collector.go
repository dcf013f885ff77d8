// Package metrics adapts a tickcache.Stats snapshot to a
// prometheus.Collector, following the "atomic counters kept for
// Prometheus scraping" pattern from Voskan-arena-cache's pkg/cache.go
// (other_examples) — there the counters were exported directly; here
// they are wrapped behind the standard client_golang Collector
// interface so a cache can be registered like any other component.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	tickcache "github.com/m-thenot/tick-cache"
)

// StatsSource is anything that can produce a point-in-time Stats
// snapshot. tickcache.Cache[K, V] satisfies this for any K, V without
// metrics needing to import tickcache's generic type parameters.
type StatsSource interface {
	Stats() Stats
}

// Stats is tickcache.Stats under a local alias, so callers outside the
// root module can reference it as metrics.Stats without a second
// import.
type Stats = tickcache.Stats

// Collector exports a cache's Stats snapshot as Prometheus metrics
// under the given namespace and the fixed subsystem "cache". Registered
// once per cache instance via prometheus.Registry.Register.
type Collector struct {
	source StatsSource

	hits         *prometheus.Desc
	misses       *prometheus.Desc
	sets         *prometheus.Desc
	deletes      *prometheus.Desc
	evictions    *prometheus.Desc
	expirations  *prometheus.Desc
	growthEvents *prometheus.Desc
	size         *prometheus.Desc
}

// NewCollector builds a Collector over source, labeling every metric
// with the given cache name.
func NewCollector(namespace, name string, source StatsSource) *Collector {
	constLabels := prometheus.Labels{"cache": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", metric),
			help,
			nil,
			constLabels,
		)
	}
	return &Collector{
		source:       source,
		hits:         desc("hits_total", "Successful Get calls."),
		misses:       desc("misses_total", "Get calls for an absent or expired key."),
		sets:         desc("sets_total", "Set calls that inserted or updated an entry."),
		deletes:      desc("deletes_total", "Explicit Delete calls that removed an entry."),
		evictions:    desc("evictions_total", "Entries removed by LRU eviction."),
		expirations:  desc("expirations_total", "Entries removed because their TTL elapsed."),
		growthEvents: desc("growth_events_total", "Times the entry arena's backing columns grew."),
		size:         desc("size", "Current number of live entries."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.sets
	ch <- c.deletes
	ch <- c.evictions
	ch <- c.expirations
	ch <- c.growthEvents
	ch <- c.size
}

// Collect implements prometheus.Collector. It takes one Stats
// snapshot, which itself acquires the cache's mutex briefly — no lock
// is held for the duration of Collect.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.sets, prometheus.CounterValue, float64(s.Sets))
	ch <- prometheus.MustNewConstMetric(c.deletes, prometheus.CounterValue, float64(s.Deletes))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations))
	ch <- prometheus.MustNewConstMetric(c.growthEvents, prometheus.CounterValue, float64(s.GrowthEvents))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
}
