package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the relay
type MetricsRegistry struct {
	Registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Upstream Metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Poller Metrics
	PollCyclesTotal  *prometheus.CounterVec
	PollStaleDropped *prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all
// metrics registered on a private registry.
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsRegistry{
		Registry: reg,

		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightrelay_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightrelay_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flightrelay_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Upstream Metrics
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightrelay_upstream_requests_total",
				Help: "Calls forwarded to the airline web service by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightrelay_upstream_request_duration_seconds",
				Help:    "Round trip time to the airline web service in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightrelay_cache_hits_total",
				Help: "Total reference cache hits by key",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightrelay_cache_misses_total",
				Help: "Total reference cache misses by key",
			},
			[]string{"cache_key_pattern"},
		),

		// Poller Metrics
		PollCyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightrelay_poll_cycles_total",
				Help: "Completed poll cycles by source and result",
			},
			[]string{"source", "result"},
		),
		PollStaleDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightrelay_poll_stale_dropped_total",
				Help: "Poll responses discarded because a newer request had already been applied",
			},
			[]string{"source"},
		),
	}
}
