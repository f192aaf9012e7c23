package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides proxy metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	ProxyRequestsTotal *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
	UpstreamErrors     *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		ProxyRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proxy_requests_total",
				Help:      "Total number of proxy requests by request type and response status",
			},
			[]string{"type", "status"},
		),

		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream weather provider latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"type"},
		),

		UpstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_errors_total",
				Help:      "Upstream failures by reason",
			},
			[]string{"reason"},
		),
	}
}

// Handler exposes the collector's registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordProxyRequest counts a finished proxy request.
func (c *Collector) RecordProxyRequest(requestType string, status int) {
	c.ProxyRequestsTotal.WithLabelValues(requestType, strconv.Itoa(status)).Inc()
}

// ObserveUpstream records an upstream call's latency.
func (c *Collector) ObserveUpstream(requestType string, started time.Time) {
	c.UpstreamDuration.WithLabelValues(requestType).Observe(time.Since(started).Seconds())
}

// RecordUpstreamError counts an upstream failure.
func (c *Collector) RecordUpstreamError(reason string) {
	c.UpstreamErrors.WithLabelValues(reason).Inc()
}
