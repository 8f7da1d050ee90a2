package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheStats = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "local_cache_stats",
	Help: "Metrics for in-process caches",
}, []string{"name", "metric"})

func (l *Local[V]) report() {
	m := l.inner.Metrics
	cacheStats.WithLabelValues(l.name, "hits").Set(float64(m.Hits()))
	cacheStats.WithLabelValues(l.name, "misses").Set(float64(m.Misses()))
	cacheStats.WithLabelValues(l.name, "ratio").Set(m.Ratio())

	cacheStats.WithLabelValues(l.name, "sets_dropped").Set(float64(m.SetsDropped()))
	cacheStats.WithLabelValues(l.name, "sets_rejected").Set(float64(m.SetsRejected()))
	cacheStats.WithLabelValues(l.name, "gets_dropped").Set(float64(m.GetsDropped()))
	cacheStats.WithLabelValues(l.name, "gets_kept").Set(float64(m.GetsKept()))

	cacheStats.WithLabelValues(l.name, "cost_added").Set(float64(m.CostAdded()))
	cacheStats.WithLabelValues(l.name, "cost_evicted").Set(float64(m.CostEvicted()))
	cacheStats.WithLabelValues(l.name, "size").Set(float64(m.CostAdded() - m.CostEvicted()))
}

// ReportPeriodically exports the cache's metrics to prometheus every period
// until stop is closed.
func (l *Local[V]) ReportPeriodically(period time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			l.report()
			select {
			case <-ticker.C:
			case <-stop:
				return
			}
		}
	}()
}
