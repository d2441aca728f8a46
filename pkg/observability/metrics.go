// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the server. Both are off the protocol stream: metrics are
// served on an optional HTTP listener, traces go to an OTLP endpoint.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	ServiceName    string
	ServiceVersion string

	// Addr is the listen address for the /metrics endpoint. Empty
	// disables the listener; metrics are still collected.
	Addr        string
	MetricsPath string // default /metrics

	Namespace        string    // Prometheus namespace (default: frisco_mcp)
	HistogramBuckets []float64 // latency buckets in milliseconds

	ConstLabels prometheus.Labels
}

// MetricsProvider records server activity
type MetricsProvider interface {
	RecordRequest(method, status string, duration time.Duration)
	RecordToolCall(tool, status string, duration time.Duration)
	RecordError(code string)

	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// PrometheusMetricsProvider implements MetricsProvider using a dedicated
// Prometheus registry
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry
	server   *http.Server

	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	toolCallTotal    *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	errorTotal       *prometheus.CounterVec
}

// NewMetricsProvider creates a Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	if config.Namespace == "" {
		config.Namespace = "frisco_mcp"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}
	}
	if config.ConstLabels == nil {
		config.ConstLabels = prometheus.Labels{}
	}
	if config.ServiceName != "" {
		config.ConstLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		config.ConstLabels["version"] = config.ServiceVersion
	}

	p := &PrometheusMetricsProvider{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	p.requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "requests_total",
			Help:        "Total number of JSON-RPC requests handled",
			ConstLabels: config.ConstLabels,
		},
		[]string{"method", "status"},
	)
	p.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "request_duration_milliseconds",
			Help:        "Duration of JSON-RPC request handling in milliseconds",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		},
		[]string{"method", "status"},
	)
	p.toolCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "tool_calls_total",
			Help:        "Total number of tool invocations",
			ConstLabels: config.ConstLabels,
		},
		[]string{"tool", "status"},
	)
	p.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "tool_call_duration_milliseconds",
			Help:        "Duration of tool invocations in milliseconds",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		},
		[]string{"tool", "status"},
	)
	p.errorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "errors_total",
			Help:        "Total number of error responses by JSON-RPC code",
			ConstLabels: config.ConstLabels,
		},
		[]string{"code"},
	)

	collectors := []prometheus.Collector{
		p.requestTotal, p.requestDuration,
		p.toolCallTotal, p.toolCallDuration,
		p.errorTotal,
	}
	for _, c := range collectors {
		if err := p.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return p, nil
}

// RecordRequest records one handled request
func (p *PrometheusMetricsProvider) RecordRequest(method, status string, duration time.Duration) {
	p.requestTotal.WithLabelValues(method, status).Inc()
	p.requestDuration.WithLabelValues(method, status).Observe(float64(duration.Milliseconds()))
}

// RecordToolCall records one tool invocation
func (p *PrometheusMetricsProvider) RecordToolCall(tool, status string, duration time.Duration) {
	p.toolCallTotal.WithLabelValues(tool, status).Inc()
	p.toolCallDuration.WithLabelValues(tool, status).Observe(float64(duration.Milliseconds()))
}

// RecordError records one error response
func (p *PrometheusMetricsProvider) RecordError(code string) {
	p.errorTotal.WithLabelValues(code).Inc()
}

// Registry exposes the underlying registry, mainly for tests
func (p *PrometheusMetricsProvider) Registry() *prometheus.Registry {
	return p.registry
}

// Start serves the /metrics endpoint when an address is configured.
// Non-blocking; the listener runs until Shutdown.
func (p *PrometheusMetricsProvider) Start(ctx context.Context) error {
	if p.config.Addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))

	p.server = &http.Server{
		Addr:              p.config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// The protocol loop must not die with the listener; the
			// error surfaces on Shutdown instead.
			_ = err
		}
	}()
	return nil
}

// Shutdown stops the metrics listener if one is running
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}
