// Package prom bridges the cache's counters into a prometheus.Collector so
// applications can expose them on their existing registry.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/swrcache"
)

// Collector reads the cache's metrics on every scrape and reports them as
// const metrics. Register one collector per cache instance.
type Collector struct {
	metrics *swrcache.Metrics

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	staleHits *prometheus.Desc
	sets      *prometheus.Desc
	removals  *prometheus.Desc
	evictions *prometheus.Desc
	size      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a Collector for m. Namespace prefixes every metric
// name (e.g. "myapp" -> myapp_cache_hits_total).
func NewCollector(m *swrcache.Metrics, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", name),
			help, nil, nil,
		)
	}
	return &Collector{
		metrics:   m,
		hits:      desc("hits_total", "Fresh cache hits."),
		misses:    desc("misses_total", "Cache misses."),
		staleHits: desc("stale_hits_total", "Reads served from the stale window."),
		sets:      desc("sets_total", "Cache writes."),
		removals:  desc("removals_total", "Explicit removals, including tag invalidations."),
		evictions: desc("evictions_total", "Keys dropped because they expired."),
		size:      desc("size", "Keys currently installed."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.staleHits
	ch <- c.sets
	ch <- c.removals
	ch <- c.evictions
	ch <- c.size
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.staleHits, prometheus.CounterValue, float64(s.StaleHits))
	ch <- prometheus.MustNewConstMetric(c.sets, prometheus.CounterValue, float64(s.Sets))
	ch <- prometheus.MustNewConstMetric(c.removals, prometheus.CounterValue, float64(s.Removals))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
}
