// Package health reports whether balances are being collected and serves
// the metrics and health endpoints.
package health

import (
	"time"

	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

// SystemStatus represents the overall health state of the system or a network.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// severity orders statuses so the worst one wins.
func (s SystemStatus) severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// NetworkHealth contains the outcome of the last pass over one network.
type NetworkHealth struct {
	Network    string            `json:"network"`
	Status     SystemStatus      `json:"status"`
	Results    int               `json:"results"`
	Failures   int               `json:"failures"`
	ErrorRate  float64           `json:"error_rate"`
	LastPassAt time.Time         `json:"last_pass_at,omitzero"`
	Provider   *rpc.HealthStatus `json:"provider,omitempty"`
}

// Report contains the full system health report.
type Report struct {
	SystemStatus SystemStatus             `json:"system_status"`
	LastPassAt   time.Time                `json:"last_pass_at,omitzero"`
	Networks     map[string]NetworkHealth `json:"networks"`
}
