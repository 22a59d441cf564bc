// Package control wires the balance monitor to its exporters and runs the
// polling loop.
package control

import (
	"io"
	"log/slog"
	"time"

	"github.com/vietddude/balancewatch/internal/core/config"
	"github.com/vietddude/balancewatch/internal/health"
	"github.com/vietddude/balancewatch/internal/monitor"
)

const (
	// DefaultInterval is the pause between two passes.
	DefaultInterval = 100 * time.Second

	// shutdownTimeout bounds the graceful stop of the HTTP server.
	shutdownTimeout = 15 * time.Second
)

// Config holds the application configuration.
type Config struct {
	// Watch is the parsed watch list.
	Watch *config.Config

	// Bind is the address of the metrics and health server.
	Bind string

	// Interval is the sleep between the end of a pass and the next one.
	// Zero means DefaultInterval.
	Interval time.Duration

	// PrintBalances writes every result to Output.
	PrintBalances bool
	Output        io.Writer

	// Dialer overrides how network clients are built. The default dials
	// EVM nodes over JSON-RPC and records call metrics.
	Dialer monitor.Dialer

	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Bind == "" {
		c.Bind = health.DefaultAddr
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
