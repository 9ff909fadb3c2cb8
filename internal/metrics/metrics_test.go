package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.Fallback()
	m.PageFailure("ocr")
	m.Extraction("ocr", "ok", 1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pageFailures.WithLabelValues("ocr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("ocr", "ok")))
}

func TestMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.CacheWrite()
		m.CacheError()
		m.Fallback()
		m.PageFailure("text-layer")
		m.Extraction("ocr", "empty", 0.1)
	})
}
