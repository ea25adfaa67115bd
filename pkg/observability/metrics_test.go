package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry and become visible after first observation.
func TestMetricsRegistered(t *testing.T) {
	// Seed all metrics so the families appear in the gather output.
	ToolCallsTotal.WithLabelValues("complete", "ok").Inc()
	ToolCallDuration.WithLabelValues("complete").Observe(0.1)
	ProxyRequestsTotal.WithLabelValues("direct", "test", "ok").Inc()
	ProxyLatency.WithLabelValues("direct", "test").Observe(0.1)
	ProxyTokensTotal.WithLabelValues("test", "input").Add(10)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"vermittler_tool_calls_total":           false,
		"vermittler_tool_call_duration_seconds": false,
		"vermittler_proxy_requests_total":       false,
		"vermittler_proxy_latency_seconds":      false,
		"vermittler_proxy_tokens_total":         false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

// TestCounterIncrements verifies counter label plumbing end to end.
func TestCounterIncrements(t *testing.T) {
	before := counterValue(t, ProxyRequestsTotal, "library", "gpt-4o", "ok")
	ProxyRequestsTotal.WithLabelValues("library", "gpt-4o", "ok").Inc()
	after := counterValue(t, ProxyRequestsTotal, "library", "gpt-4o", "ok")

	if after-before != 1 {
		t.Errorf("expected counter delta 1, got %f", after-before)
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}
