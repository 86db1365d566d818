package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveExtraction(t *testing.T) {
	m := New()
	m.ObserveExtraction(4, nil)
	m.ObserveExtraction(2, nil)
	m.ObserveExtraction(0, errors.New("parse"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesExtracted))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.unitsEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractFailures))
}

func TestMetrics_ObserveCache(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExtraction(1, nil)
		m.ObserveCache(true)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveExtraction(3, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "jsoutline_units_emitted_total 3")
}
