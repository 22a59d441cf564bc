// Package rpc provides the node transport used by chain clients.
//
// # Quick Start
//
//	import "github.com/vietddude/balancewatch/internal/infra/rpc"
//
//	u, _ := url.Parse("https://mainnet.example/rpc")
//	client, err := rpc.NewTransport("mainnet", u, 30*time.Second)
//	result, err := client.Execute(ctx, rpc.NewOperation("eth_getBalance", addr, "latest"))
//
// Calls are never retried: a failed call surfaces its error to the caller.
//
// # Package Structure
//
//   - provider/ - Provider implementations (HTTPProvider, monitoring)
//
// Most types are re-exported at the root level for convenience.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vietddude/balancewatch/internal/infra/rpc/provider"
)

// ErrUnsupportedScheme is returned for node URLs that are not http or https.
var ErrUnsupportedScheme = errors.New("unknown scheme")

// RPCClient is the minimal capability chain clients need.
type RPCClient interface {
	Execute(ctx context.Context, op Operation) (any, error)
}

// =============================================================================
// Re-exported types from provider package
// =============================================================================

// Provider is the core interface for RPC endpoints.
type Provider = provider.Provider

// RPCProvider is the interface for providers that support JSON-RPC calls.
type RPCProvider = provider.RPCProvider

// HTTPProvider implements Provider for JSON-RPC over HTTP.
type HTTPProvider = provider.HTTPProvider

// HealthStatus represents the health state of a provider.
type HealthStatus = provider.HealthStatus

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats = provider.MonitorStats

// Operation represents an RPC operation to execute.
type Operation = provider.Operation

// RPCError is an error object returned by the node.
type RPCError = provider.RPCError

// NewHTTPProvider creates a new HTTP-based RPC provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return provider.NewHTTPProvider(name, endpoint, timeout)
}

// NewOperation creates an Operation for a JSON-RPC method.
func NewOperation(method string, params ...any) Operation {
	return provider.NewOperation(method, params...)
}

// SupportedScheme reports whether a node URL scheme has a transport.
func SupportedScheme(scheme string) bool {
	switch scheme {
	case "http", "https":
		return true
	default:
		return false
	}
}

// NewTransport picks the transport for a node URL. No request is made.
func NewTransport(name string, u *url.URL, timeout time.Duration) (Provider, error) {
	if !SupportedScheme(u.Scheme) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	return provider.NewHTTPProvider(name, u.String(), timeout), nil
}
