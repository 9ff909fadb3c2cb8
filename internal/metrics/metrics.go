// Package metrics exposes extraction counters through Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "finextract"

type Metrics struct {
	extractions  *prometheus.CounterVec
	cache        *prometheus.CounterVec
	fallbacks    prometheus.Counter
	pageFailures *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Documents processed, by method and outcome.",
		}, []string{"method", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Result cache lookups and writes.",
		}, []string{"event"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_fallbacks_total",
			Help:      "Text-layer results rejected by the quality check.",
		}),
		pageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_failures_total",
			Help:      "Pages skipped because processing failed.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall time of a single extraction.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method"}),
	}
	for _, c := range []prometheus.Collector{m.extractions, m.cache, m.fallbacks, m.pageFailures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Extraction(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cache.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cache.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) CacheWrite() {
	if m != nil {
		m.cache.WithLabelValues("write").Inc()
	}
}

func (m *Metrics) CacheError() {
	if m != nil {
		m.cache.WithLabelValues("error").Inc()
	}
}

func (m *Metrics) Fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}

func (m *Metrics) PageFailure(method string) {
	if m != nil {
		m.pageFailures.WithLabelValues(method).Inc()
	}
}
