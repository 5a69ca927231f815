// Package metrics exposes Prometheus counters for the dashboard backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "indicador_dash"

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	upstreamCalls      *prometheus.CounterVec
	tokenRefreshes     *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	anomalyTransitions *prometheus.CounterVec
}

// New creates and registers the collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Calls to the Indicador Online API, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Upstream token refreshes, by result.",
		}, []string{"result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_submissions_total",
			Help:      "Checklist submissions, by result.",
		}, []string{"result"}),
		anomalyTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomaly_transitions_total",
			Help:      "Anomaly resolution transitions, by target status and result.",
		}, []string{"status", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.upstreamCalls,
		m.tokenRefreshes,
		m.submissions,
		m.anomalyTransitions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// UpstreamCall counts one upstream call; outcome is "ok" or an error kind
func (m *Metrics) UpstreamCall(operation, outcome string) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) TokenRefresh(ok bool) {
	if m == nil {
		return
	}
	m.tokenRefreshes.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) Submission(ok bool) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) AnomalyTransition(status string, ok bool) {
	if m == nil {
		return
	}
	m.anomalyTransitions.WithLabelValues(status, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
