package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RequestsInFlight    prometheus.Gauge

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	RecordsNormalizedTotal prometheus.Counter
	RecordsIncompleteTotal prometheus.Counter
	RecordsDroppedTotal    prometheus.Counter

	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec
}

// New регистрирует метрики в переданном registerer; в тестах передаём
// prometheus.NewRegistry(), в main — prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "books_mcp_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "books_mcp_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "books_mcp_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "books_mcp_upstream_requests_total",
				Help: "Total number of OpenLibrary API requests",
			},
			[]string{"operation", "status"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "books_mcp_upstream_request_duration_seconds",
				Help:    "OpenLibrary request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		),

		RecordsNormalizedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "books_mcp_records_normalized_total",
				Help: "Total number of upstream records normalized",
			},
		),
		RecordsIncompleteTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "books_mcp_records_incomplete_total",
				Help: "Total number of normalized records missing critical fields",
			},
		),
		RecordsDroppedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "books_mcp_records_dropped_total",
				Help: "Total number of upstream records dropped as undecodable",
			},
		),

		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "books_mcp_tool_calls_total",
				Help: "Total number of MCP tool calls",
			},
			[]string{"tool", "status"},
		),
		ToolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "books_mcp_tool_call_duration_seconds",
				Help:    "MCP tool call duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tool"},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstreamRequest(operation, status string, duration time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordBatch(total, incomplete, dropped int) {
	m.RecordsNormalizedTotal.Add(float64(total))
	m.RecordsIncompleteTotal.Add(float64(incomplete))
	m.RecordsDroppedTotal.Add(float64(dropped))
}

func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
