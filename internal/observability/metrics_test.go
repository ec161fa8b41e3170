package observability

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 7*time.Millisecond)
	m.RecordError("/tickets/1", "PUT", "VALIDATION_FAILED")

	stats := m.requests[routeKey{method: "GET", path: "/tickets", status: 200}]
	if stats == nil || stats.count != 2 || stats.duration != 12*time.Millisecond {
		t.Fatalf("stats = %+v, expected count 2, duration 12ms", stats)
	}
	if m.errors[errorKey{method: "PUT", path: "/tickets/1", code: "VALIDATION_FAILED"}] != 1 {
		t.Fatal("error counter not incremented")
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/tickets", "GET", 200, time.Millisecond)
	m.RecordError("/tickets", "GET", "INTERNAL_ERROR")
}
