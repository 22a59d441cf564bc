package provider

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// ProviderStatus represents the health state of a provider.
type ProviderStatus int

const (
	StatusHealthy   ProviderStatus = iota // Provider is working normally
	StatusDegraded                        // Provider is slow or failing often
	StatusThrottled                       // Provider is rate limiting
	StatusBlocked                         // Provider has blocked this client
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON reports.
func (s ProviderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats struct {
	Status           ProviderStatus `json:"status"`
	AverageLatency   time.Duration  `json:"average_latency"`
	ThrottleCount429 int            `json:"throttle_count_429"`
	ThrottleCount403 int            `json:"throttle_count_403"`
	RecentFailures   int            `json:"recent_failures"`
}

// ProviderMonitor tracks latency, failures and rate limiting of one
// endpoint. The window is the last maxLatencyWindow outcomes.
type ProviderMonitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	recentOutcomes   []bool // true = failure
	maxLatencyWindow int

	status429Count   int
	status403Count   int
	throttlePatterns []string
	lastThrottleTime time.Time
	backoffWindow    time.Duration

	slowResponseThreshold time.Duration
	degradedThreshold     float64
}

// NewProviderMonitor creates a new monitor with default settings.
func NewProviderMonitor() *ProviderMonitor {
	return &ProviderMonitor{
		recentLatencies:  make([]time.Duration, 0, 100),
		recentOutcomes:   make([]bool, 0, 100),
		maxLatencyWindow: 100,
		throttlePatterns: []string{
			"rate limit exceeded",
			"too many requests",
			"daily request count exceeded",
			"project rate limit",
			"monthly quota exceeded",
		},
		slowResponseThreshold: 3 * time.Second,
		degradedThreshold:     0.3, // 30% failures
	}
}

// RecordRequest records a successful request with its latency.
func (pm *ProviderMonitor) RecordRequest(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.recentLatencies = appendWindow(pm.recentLatencies, latency, pm.maxLatencyWindow)
	pm.recentOutcomes = appendWindow(pm.recentOutcomes, false, pm.maxLatencyWindow)
}

// RecordFailure records a failed request.
func (pm *ProviderMonitor) RecordFailure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.recentOutcomes = appendWindow(pm.recentOutcomes, true, pm.maxLatencyWindow)
}

// RecordThrottle records a rate limiting or blocking response.
func (pm *ProviderMonitor) RecordThrottle(statusCode int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.lastThrottleTime = time.Now()

	switch statusCode {
	case http.StatusForbidden:
		pm.status403Count++
		pm.backoffWindow = 10 * time.Minute // Longer for IP block
	default:
		pm.status429Count++
		pm.backoffWindow = time.Minute
	}
}

// DetectThrottlePattern checks if a message contains throttle patterns.
func (pm *ProviderMonitor) DetectThrottlePattern(message string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	lowerMsg := strings.ToLower(message)
	for _, pattern := range pm.throttlePatterns {
		if strings.Contains(lowerMsg, pattern) {
			return true
		}
	}
	return false
}

// CheckProviderStatus returns the current status of the provider.
func (pm *ProviderMonitor) CheckProviderStatus() ProviderStatus {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.statusLocked()
}

func (pm *ProviderMonitor) statusLocked() ProviderStatus {
	throttledRecently := time.Since(pm.lastThrottleTime) < pm.backoffWindow

	if pm.status403Count > 0 && throttledRecently {
		return StatusBlocked
	}
	if pm.status429Count > 0 && throttledRecently {
		return StatusThrottled
	}

	if len(pm.recentOutcomes) > 10 {
		failures := countTrue(pm.recentOutcomes)
		if float64(failures)/float64(len(pm.recentOutcomes)) > pm.degradedThreshold {
			return StatusDegraded
		}
	}

	if len(pm.recentLatencies) > 10 && pm.averageLatencyLocked() > pm.slowResponseThreshold {
		return StatusDegraded
	}

	return StatusHealthy
}

// GetAverageLatency returns the average latency of recent requests.
func (pm *ProviderMonitor) GetAverageLatency() time.Duration {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.averageLatencyLocked()
}

func (pm *ProviderMonitor) averageLatencyLocked() time.Duration {
	if len(pm.recentLatencies) == 0 {
		return 0
	}

	var total time.Duration
	for _, lat := range pm.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(pm.recentLatencies))
}

// GetStats returns current monitoring statistics.
func (pm *ProviderMonitor) GetStats() MonitorStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return MonitorStats{
		Status:           pm.statusLocked(),
		AverageLatency:   pm.averageLatencyLocked(),
		ThrottleCount429: pm.status429Count,
		ThrottleCount403: pm.status403Count,
		RecentFailures:   countTrue(pm.recentOutcomes),
	}
}

func appendWindow[T any](window []T, v T, limit int) []T {
	window = append(window, v)
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window
}

func countTrue(values []bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
