// Package provider implements the node transport.
//
// This package contains:
//   - Provider interface: core abstraction for RPC endpoints
//   - HTTPProvider: JSON-RPC 2.0 over HTTP(S)
//   - ProviderMonitor: latency, failure and throttle tracking
package provider

import (
	"context"
	"fmt"
	"time"
)

// Operation represents an RPC operation to execute.
type Operation struct {
	// Name is the JSON-RPC method (e.g., "eth_getBalance")
	Name string

	// Params are the positional JSON-RPC params.
	Params []any
}

// NewOperation creates an Operation for a JSON-RPC method.
func NewOperation(method string, params ...any) Operation {
	return Operation{Name: method, Params: params}
}

// Provider defines the core interface for an RPC endpoint.
type Provider interface {
	// GetName returns provider identifier (the network name)
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// Execute performs the operation with monitoring and error handling
	Execute(ctx context.Context, op Operation) (any, error)

	// Close cleans up resources
	Close() error
}

// RPCProvider extends Provider with direct JSON-RPC calls.
type RPCProvider interface {
	Provider

	// Call makes a single RPC request
	Call(ctx context.Context, method string, params []any) (any, error)
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	Requests      int           `json:"requests"`
	Failures      int           `json:"failures"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
