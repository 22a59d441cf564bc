package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/balancewatch/internal/core/domain"
	"github.com/vietddude/balancewatch/internal/exporter"
	"github.com/vietddude/balancewatch/internal/health"
	"github.com/vietddude/balancewatch/internal/infra/chain"
	"github.com/vietddude/balancewatch/internal/infra/chain/evm"
	"github.com/vietddude/balancewatch/internal/infra/rpc"
	"github.com/vietddude/balancewatch/internal/monitor"
)

// Watcher is the main application struct that manages the polling lifecycle.
type Watcher struct {
	cfg      Config
	monitor  *monitor.Monitor
	registry *prometheus.Registry
	metrics  *exporter.Prometheus
	tracker  *health.Tracker
	server   *health.Server
	observe  domain.Observer
	log      *slog.Logger
}

// NewWatcher resolves the watch list and initializes every dependency.
// Nothing is sent to the nodes until Run.
func NewWatcher(cfg Config) (*Watcher, error) {
	if cfg.Watch == nil {
		return nil, errors.New("no watch list configured")
	}
	cfg.setDefaults()
	log := cfg.Logger

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = instrumentedDialer(exporter.NewRPCMetrics(registry))
	}

	mon, err := monitor.New(cfg.Watch, monitor.WithDialer(dialer), monitor.WithLogger(log))
	if err != nil {
		return nil, err
	}

	summaries := mon.Networks()
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.Name)
		log.Info("Monitoring network",
			"network", s.Name,
			"addresses", s.Addresses,
			"tokens", s.Tokens,
			"queries", s.Queries,
		)
	}

	tracker := health.NewTracker(names, cfg.Interval)
	for name, client := range mon.Clients() {
		if reporter, ok := client.(health.HealthReporter); ok {
			tracker.AddProvider(name, reporter)
		}
	}

	metrics := exporter.NewPrometheus(registry)
	observers := []domain.Observer{
		metrics.Observe,
		tracker.Observe,
		exporter.LogFailures(log),
	}
	if cfg.PrintBalances {
		out := cfg.Output
		colored := false
		if out == nil {
			out = os.Stdout
			colored = true
		}
		observers = append(observers, exporter.NewConsole(out, colored).Observe)
	}

	return &Watcher{
		cfg:      cfg,
		monitor:  mon,
		registry: registry,
		metrics:  metrics,
		tracker:  tracker,
		server:   health.NewServer(cfg.Bind, tracker, registry),
		observe:  exporter.Multi(observers...),
		log:      log,
	}, nil
}

// instrumentedDialer dials EVM nodes through a transport that records
// call metrics.
func instrumentedDialer(m *exporter.RPCMetrics) monitor.Dialer {
	return func(network string, u *url.URL, timeout time.Duration) (chain.Client, error) {
		transport, err := rpc.NewTransport(network, u, timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport from node url: %w", err)
		}
		return evm.NewClient(network, m.Instrument(network, transport)), nil
	}
}

// Run serves metrics and polls balances until ctx is done or the server
// fails. Network clients are closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.monitor.Close(); err != nil {
			w.log.Warn("Failed to close network clients", "error", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.log.Info("Serving metrics", "addr", w.server.Addr())
		if err := w.server.Start(); err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return w.server.Stop(shutdownCtx)
	})

	g.Go(func() error {
		w.poll(ctx)
		return nil
	})

	return g.Wait()
}

// poll runs passes back to back, sleeping Interval after each one.
func (w *Watcher) poll(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			w.RunPass(ctx)
			timer.Reset(w.cfg.Interval)
		}
	}
}

// RunPass collects every balance once and records the pass.
func (w *Watcher) RunPass(ctx context.Context) monitor.PassStats {
	log := w.log.With("pass", uuid.New().String())
	log.Debug("Starting pass")

	stats := w.monitor.Collect(ctx, w.observe)
	if ctx.Err() != nil {
		log.Debug("Pass interrupted", "results", stats.Results)
		return stats
	}

	now := time.Now()
	w.metrics.MarkPass(now)
	w.tracker.FinishPass(now)

	log.Info("Balances updated",
		"results", stats.Results,
		"failures", stats.Failures,
		"duration", stats.Duration,
	)
	return stats
}

// Registry returns the registry every metric is registered on.
func (w *Watcher) Registry() *prometheus.Registry {
	return w.registry
}

// Health returns the current health report.
func (w *Watcher) Health() health.Report {
	return w.tracker.Report()
}
