package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr is the default bind address of the server.
const DefaultAddr = "0.0.0.0:8080"

// Server provides HTTP endpoints for metrics and health monitoring.
type Server struct {
	tracker *Tracker
	server  *http.Server
}

// NewServer creates a new server on addr. Metrics come from gatherer and
// are served on /metrics and on every unknown path.
func NewServer(addr string, tracker *Tracker, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	s := &Server{
		tracker: tracker,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", metrics)
	mux.Handle("/", metrics)

	return s
}

// Addr returns the bind address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Stop is called. A clean stop returns nil.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.tracker.Status()

	response := map[string]string{"status": string(status)}
	w.Header().Set("Content-Type", "application/json")

	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.tracker.Report()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
