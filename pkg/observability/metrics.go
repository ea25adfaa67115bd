// Package observability provides Prometheus metrics for the vermittler
// server. Metrics are served on a dedicated HTTP listener because the
// MCP protocol owns stdio.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// ToolCallsTotal counts tool surface operations by name and outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vermittler_tool_calls_total",
			Help: "Tool surface operations",
		},
		[]string{"operation", "status"},
	)

	// ToolCallDuration records tool operation duration in seconds.
	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vermittler_tool_call_duration_seconds",
			Help:    "Tool operation duration",
			Buckets: LLMBuckets,
		},
		[]string{"operation"},
	)

	// ProxyRequestsTotal counts requests sent to the downstream proxy by
	// call path (direct or library), model, and outcome.
	ProxyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vermittler_proxy_requests_total",
			Help: "Proxy requests",
		},
		[]string{"path", "model", "status"},
	)

	// ProxyLatency records downstream proxy latency in seconds.
	ProxyLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vermittler_proxy_latency_seconds",
			Help:    "Proxy latency",
			Buckets: LLMBuckets,
		},
		[]string{"path", "model"},
	)

	// ProxyTokensTotal counts tokens reported by the proxy by direction
	// (input/output). Usage metadata is never returned to callers; this
	// and the log line are its only sinks.
	ProxyTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vermittler_proxy_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)
)

func init() {
	prometheus.MustRegister(
		ToolCallsTotal,
		ToolCallDuration,
		ProxyRequestsTotal,
		ProxyLatency,
		ProxyTokensTotal,
	)
}
