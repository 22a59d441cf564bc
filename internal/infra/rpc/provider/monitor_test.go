package provider

import (
	"net/http"
	"testing"
	"time"
)

func TestMonitorLatencyWindow(t *testing.T) {
	m := NewProviderMonitor()

	m.RecordRequest(100 * time.Millisecond)
	if got := m.GetAverageLatency(); got != 100*time.Millisecond {
		t.Errorf("Expected 100ms, got %v", got)
	}

	// The window keeps only the most recent samples
	for i := 0; i < 100; i++ {
		m.RecordRequest(50 * time.Millisecond)
	}
	if got := m.GetAverageLatency(); got != 50*time.Millisecond {
		t.Errorf("Expected 50ms, got %v", got)
	}
}

func TestMonitorDegradedOnFailures(t *testing.T) {
	m := NewProviderMonitor()

	for i := 0; i < 10; i++ {
		m.RecordRequest(10 * time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		m.RecordFailure()
	}

	stats := m.GetStats()
	if stats.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %v", stats.Status)
	}
	if stats.RecentFailures != 10 {
		t.Errorf("Expected 10 failures, got %d", stats.RecentFailures)
	}
}

func TestMonitorBlocked(t *testing.T) {
	m := NewProviderMonitor()
	m.RecordThrottle(http.StatusForbidden)

	if s := m.CheckProviderStatus(); s != StatusBlocked {
		t.Errorf("Expected blocked, got %v", s)
	}
}

func TestMonitorThrottlePattern(t *testing.T) {
	m := NewProviderMonitor()

	if !m.DetectThrottlePattern("Project Rate Limit reached") {
		t.Error("expected throttle pattern to match")
	}
	if m.DetectThrottlePattern("execution reverted") {
		t.Error("expected no match")
	}
}
