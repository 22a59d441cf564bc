package exporter

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

// RPCMetrics tracks node calls per network and method.
type RPCMetrics struct {
	Calls   *prometheus.CounterVec
	Errors  *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

// NewRPCMetrics registers the node call metrics on reg.
func NewRPCMetrics(reg prometheus.Registerer) *RPCMetrics {
	factory := promauto.With(reg)
	return &RPCMetrics{
		Calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balancewatch_rpc_calls_total",
				Help: "Total number of RPC calls",
			},
			[]string{"network", "method"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balancewatch_rpc_errors_total",
				Help: "Total number of RPC errors",
			},
			[]string{"network", "error_type"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "balancewatch_rpc_latency_seconds",
				Help:    "RPC call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"network", "method"},
		),
	}
}

// Instrument wraps p so every call is counted and timed. Health and Close
// still reach p.
func (m *RPCMetrics) Instrument(network string, p rpc.Provider) rpc.Provider {
	return &instrumented{Provider: p, network: network, metrics: m}
}

type instrumented struct {
	rpc.Provider
	network string
	metrics *RPCMetrics
}

func (i *instrumented) Execute(ctx context.Context, op rpc.Operation) (any, error) {
	start := time.Now()
	result, err := i.Provider.Execute(ctx, op)

	i.metrics.Calls.WithLabelValues(i.network, op.Name).Inc()
	i.metrics.Latency.WithLabelValues(i.network, op.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		i.metrics.Errors.WithLabelValues(i.network, errorType(err)).Inc()
	}
	return result, err
}

func errorType(err error) string {
	var (
		rpcErr  *rpc.RPCError
		timeout interface{ Timeout() bool }
	)
	switch {
	case errors.As(err, &rpcErr):
		return "rpc"
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &timeout) && timeout.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}
