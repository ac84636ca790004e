// Package metrics defines Prometheus metrics for graphein.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphein_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphein_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphein_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ImportsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphein_imports_active",
			Help: "Imports currently processing",
		},
	)

	ImportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphein_imports_total",
			Help: "Completed imports by outcome",
		},
		[]string{"status"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphein_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	UnitCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphein_units_total",
			Help: "Total knowledge unit count",
		},
	)

	TripleCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphein_triples_total",
			Help: "Total semantic triple count",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ImportsActive, ImportsTotal, WSConnections,
		UnitCount, TripleCount,
	)
}
