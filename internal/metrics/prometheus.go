// Package metrics exposes Prometheus collectors for the permission engine.
// All record functions are nil-safe: until InitPrometheus runs they are
// no-ops, so library embedders pay nothing when metrics are off.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics wraps prometheus collectors for Polaris metrics.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	checksTotal    *prometheus.CounterVec
	cacheHitsTotal prometheus.Counter
	cacheMissTotal prometheus.Counter
	overrideHits   *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	cacheEntries   prometheus.Gauge
	batchSizeTotal prometheus.Histogram
}

// Default histogram buckets for check duration (in milliseconds).
var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 25, 50, 100, 250}

var promMetrics *PrometheusMetrics

// InitPrometheus initializes the Prometheus metrics subsystem.
func InitPrometheus(namespace string, buckets []float64) {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	pm := &PrometheusMetrics{
		registry: registry,

		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total number of authorization checks by outcome and denial category",
			},
			[]string{"outcome", "category"},
		),

		cacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decision_cache_hits_total",
				Help:      "Total decision cache hits",
			},
		),

		cacheMissTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decision_cache_misses_total",
				Help:      "Total decision cache misses",
			},
		),

		overrideHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "override_hits_total",
				Help:      "Total checks short-circuited by an explicit grant or revoke",
			},
			[]string{"kind"},
		),

		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_milliseconds",
				Help:      "Duration of authorization checks in milliseconds",
				Buckets:   buckets,
			},
			[]string{"cached"},
		),

		cacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "decision_cache_entries",
				Help:      "Current number of entries in the decision cache",
			},
		),

		batchSizeTotal: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_check_size",
				Help:      "Number of entries per batch check call",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
	}

	registry.MustRegister(
		pm.checksTotal,
		pm.cacheHitsTotal,
		pm.cacheMissTotal,
		pm.overrideHits,
		pm.checkDuration,
		pm.cacheEntries,
		pm.batchSizeTotal,
	)

	promMetrics = pm
}

// RecordCheck records one authorization check. Category is the denial
// category ("not_a_member", "explicit_deny", "role_insufficient") or
// "" for allows.
func RecordCheck(allowed bool, category string, durationMs float64, fromCache bool) {
	if promMetrics == nil {
		return
	}

	outcome := "allow"
	if !allowed {
		outcome = "deny"
	}
	if category == "" {
		category = "none"
	}
	promMetrics.checksTotal.WithLabelValues(outcome, category).Inc()

	cachedLabel := "false"
	if fromCache {
		cachedLabel = "true"
		promMetrics.cacheHitsTotal.Inc()
	} else {
		promMetrics.cacheMissTotal.Inc()
	}
	promMetrics.checkDuration.WithLabelValues(cachedLabel).Observe(durationMs)
}

// RecordOverrideHit records a check decided by an explicit override.
// Kind is "grant" or "revoke".
func RecordOverrideHit(kind string) {
	if promMetrics == nil {
		return
	}
	promMetrics.overrideHits.WithLabelValues(kind).Inc()
}

// RecordBatchSize records the entry count of a batch check call.
func RecordBatchSize(n int) {
	if promMetrics == nil {
		return
	}
	promMetrics.batchSizeTotal.Observe(float64(n))
}

// SetCacheEntries sets the current decision cache size gauge.
func SetCacheEntries(n int) {
	if promMetrics == nil {
		return
	}
	promMetrics.cacheEntries.Set(float64(n))
}

// Handler returns an http.Handler serving the metrics registry, for
// embedders that expose a scrape endpoint.
func Handler() http.Handler {
	if promMetrics == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(promMetrics.registry, promhttp.HandlerOpts{})
}
