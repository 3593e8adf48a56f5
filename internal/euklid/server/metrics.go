package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "euklid"

// Metrics holds the Prometheus collectors of one server. Each server owns
// its registry, so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts calculator operations.
	// Labels: transport (http, websocket, grpc), operation, status (ok, error kind)
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures operation latency.
	// Labels: transport, operation
	RequestDuration *prometheus.HistogramVec

	// HTTPResponses counts HTTP responses by route and status code.
	HTTPResponses *prometheus.CounterVec

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal prometheus.Counter

	// ActiveWebSockets tracks open WebSocket connections.
	ActiveWebSockets prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total calculator operations by transport, operation and status",
			},
			[]string{"transport", "operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "Calculator operation latency in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"transport", "operation"},
		),
		HTTPResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "responses_total",
				Help:      "HTTP responses by route and status code",
			},
			[]string{"route", "code"},
		),
		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
		ActiveWebSockets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "websocket",
				Name:      "active_connections",
				Help:      "Number of open WebSocket connections",
			},
		),
	}
}

// Observe records one calculator operation. status is "ok" or an error kind.
func (m *Metrics) Observe(transport, operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(transport, operation, status).Inc()
	m.RequestDuration.WithLabelValues(transport, operation).Observe(elapsed.Seconds())
}

// WatchCache exports the hit and miss counts of a cache under the label
// cache=name
func (m *Metrics) WatchCache(name string, stats func() (hits, misses int64)) {
	labels := prometheus.Labels{"cache": name}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "hits_total",
			Help:        "Cache lookups that found a live entry",
			ConstLabels: labels,
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "misses_total",
			Help:        "Cache lookups that found nothing or an expired entry",
			ConstLabels: labels,
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	)
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
