package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "azchat"

// Stream outcomes recorded by RecordStream.
const (
	StreamCompleted = "completed"
	StreamFailed    = "error"
	StreamCancelled = "cancelled"
)

// Collector owns a private registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	tokenRefreshes *prometheus.CounterVec
	streams        *prometheus.CounterVec
	streamChunks   prometheus.Counter
}

// NewCollector registers the application metrics on registry, or on a fresh
// registry when nil.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "token_refresh_total",
			Help:      "Cache bearer token refresh attempts by result.",
		}, []string{"result"}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "streams_total",
			Help:      "Chat completion streams by outcome.",
		}, []string{"outcome"}),
		streamChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "stream_lines_total",
			Help:      "NDJSON lines written to chat clients.",
		}),
	}

	registry.MustRegister(c.tokenRefreshes, c.streams, c.streamChunks)
	return c
}

func (c *Collector) RecordTokenRefresh(err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.tokenRefreshes.WithLabelValues(result).Inc()
}

func (c *Collector) RecordStream(outcome string) {
	if c == nil {
		return
	}
	c.streams.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordStreamLine() {
	if c == nil {
		return
	}
	c.streamChunks.Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
