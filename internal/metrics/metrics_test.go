package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRetrieval("semantic")
	m.ObserveRetrieval("semantic")
	m.ObserveRetrieval("truncation")
	m.ObserveIndexBuild("ready")
	m.ObserveExtractionFailure()
	m.ObserveGateway("failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.retrievals.WithLabelValues("semantic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retrievals.WithLabelValues("truncation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.indexBuilds.WithLabelValues("ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayRequests.WithLabelValues("failure")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRetrieval("semantic")
		m.ObserveIndexBuild("ready")
		m.ObserveExtractionFailure()
		m.ObserveGateway("success")
	})
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveGateway("success")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `groundchat_gateway_requests_total{outcome="success"} 1`)
}
