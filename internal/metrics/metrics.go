// Package metrics exposes Prometheus counters for the retrieval pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	retrievals         *prometheus.CounterVec
	indexBuilds        *prometheus.CounterVec
	extractionFailures prometheus.Counter
	gatewayRequests    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		retrievals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundchat_retrievals_total",
				Help: "Retrievals by the strategy that produced the result",
			},
			[]string{"strategy"},
		),
		indexBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundchat_index_builds_total",
				Help: "Knowledge base builds by outcome",
			},
			[]string{"outcome"},
		),
		extractionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groundchat_extraction_failures_total",
				Help: "Documents skipped because text extraction failed",
			},
		),
		gatewayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundchat_gateway_requests_total",
				Help: "Completion requests by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.retrievals, m.indexBuilds, m.extractionFailures, m.gatewayRequests)
	}
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRetrieval(strategy string) {
	if m == nil {
		return
	}
	m.retrievals.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObserveIndexBuild(outcome string) {
	if m == nil {
		return
	}
	m.indexBuilds.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveExtractionFailure() {
	if m == nil {
		return
	}
	m.extractionFailures.Inc()
}

func (m *Metrics) ObserveGateway(outcome string) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(outcome).Inc()
}
