// Package metrics exposes Prometheus counters and histograms for indexing,
// rendering and the bounded caches.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Faultbox/mcassets/internal/cache"
)

const namespace = "mcassets"

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors of one service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	indexBuilds   *prometheus.CounterVec
	indexDuration *prometheus.HistogramVec
	renders       *prometheus.CounterVec
	renderTime    *prometheus.HistogramVec
	iconRequests  *prometheus.CounterVec

	mu     sync.Mutex
	caches map[string]func() cache.Stats
}

// New creates metrics registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		indexBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Asset index builds by source kind and result.",
		}, []string{"source", "result"}),
		indexDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Time spent building an asset index.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"source"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Icon renders by kind and result.",
		}, []string{"kind", "result"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering one icon.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"kind"}),
		iconRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_requests_total",
			Help:      "Icon requests split by whether a render was scheduled.",
		}, []string{"outcome"}),
		caches: make(map[string]func() cache.Stats),
	}

	m.registry.MustRegister(
		m.indexBuilds, m.indexDuration,
		m.renders, m.renderTime, m.iconRequests,
		&cacheCollector{m: m},
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveIndex records one index build.
func (m *Metrics) ObserveIndex(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.indexBuilds.WithLabelValues(source, result(err)).Inc()
	m.indexDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveRender records one icon render.
func (m *Metrics) ObserveRender(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(kind, result(err)).Inc()
	m.renderTime.WithLabelValues(kind).Observe(d.Seconds())
}

// IconRequest counts a request that either scheduled a render or joined an
// existing one.
func (m *Metrics) IconRequest(scheduled bool) {
	if m == nil {
		return
	}
	outcome := "cached"
	if scheduled {
		outcome = "scheduled"
	}
	m.iconRequests.WithLabelValues(outcome).Inc()
}

// TrackCache exports the stats of a named cache. Registering a name again
// replaces the previous source.
func (m *Metrics) TrackCache(name string, stats func() cache.Stats) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.caches[name] = stats
	m.mu.Unlock()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

var (
	cacheHits = prometheus.NewDesc(namespace+"_cache_hits_total",
		"Cache lookups served from the cache.", []string{"cache"}, nil)
	cacheMisses = prometheus.NewDesc(namespace+"_cache_misses_total",
		"Cache lookups that had to compute.", []string{"cache"}, nil)
	cacheEvictions = prometheus.NewDesc(namespace+"_cache_evictions_total",
		"Entries evicted for capacity.", []string{"cache"}, nil)
	cacheEntries = prometheus.NewDesc(namespace+"_cache_entries",
		"Entries currently held.", []string{"cache"}, nil)
)

// cacheCollector reads cache stats at scrape time.
type cacheCollector struct {
	m *Metrics
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheHits
	ch <- cacheMisses
	ch <- cacheEvictions
	ch <- cacheEntries
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	c.m.mu.Lock()
	sources := make(map[string]func() cache.Stats, len(c.m.caches))
	for name, fn := range c.m.caches {
		sources[name] = fn
	}
	c.m.mu.Unlock()

	for name, fn := range sources {
		s := fn()
		ch <- prometheus.MustNewConstMetric(cacheHits, prometheus.CounterValue, float64(s.Hits), name)
		ch <- prometheus.MustNewConstMetric(cacheMisses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(cacheEvictions, prometheus.CounterValue, float64(s.Evictions), name)
		ch <- prometheus.MustNewConstMetric(cacheEntries, prometheus.GaugeValue, float64(s.Len), name)
	}
}
