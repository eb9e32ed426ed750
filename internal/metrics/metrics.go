// Package metrics exposes backend call counters for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	restCalls    *prometheus.CounterVec
	restDuration *prometheus.HistogramVec
	refreshes    *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		restCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scanreport",
			Name:      "rest_calls_total",
			Help:      "Backend REST calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		restDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scanreport",
			Name:      "rest_call_duration_seconds",
			Help:      "Backend REST call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scanreport",
			Name:      "list_refreshes_total",
			Help:      "List refreshes by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scanreport",
			Name:      "http_requests_total",
			Help:      "Console HTTP requests by method and status.",
		}, []string{"method", "status"}),
	}
	m.registry.MustRegister(m.restCalls, m.restDuration, m.refreshes, m.httpRequests)
	return m
}

// ObserveREST records one backend call. Safe on a nil receiver.
func (m *Metrics) ObserveREST(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.restCalls.WithLabelValues(op, outcome).Inc()
	m.restDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveRefresh records the result of a list refresh. Safe on a nil receiver.
func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// ObserveHTTP records a console request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, status).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
