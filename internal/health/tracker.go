package health

import (
	"sync"
	"time"

	"github.com/vietddude/balancewatch/internal/core/domain"
	"github.com/vietddude/balancewatch/internal/infra/rpc"
)

// staleFactor is how many update intervals may pass without a finished
// pass before the system is critical.
const staleFactor = 3

// HealthReporter is implemented by network clients that track transport health.
type HealthReporter interface {
	Health() (rpc.HealthStatus, bool)
}

type passCounts struct {
	results  int
	failures int
}

// Tracker observes collection passes and derives health from them.
type Tracker struct {
	networks   []string
	providers  map[string]HealthReporter
	staleAfter time.Duration
	started    time.Time
	now        func() time.Time

	mu         sync.RWMutex
	current    map[string]*passCounts
	last       map[string]passCounts
	lastPassAt time.Time
}

// NewTracker creates a tracker for the given networks. interval is the
// time between passes.
func NewTracker(networks []string, interval time.Duration) *Tracker {
	t := &Tracker{
		networks:   networks,
		providers:  make(map[string]HealthReporter),
		staleAfter: staleFactor * interval,
		now:        time.Now,
		current:    make(map[string]*passCounts),
		last:       make(map[string]passCounts),
	}
	t.started = t.now()
	return t
}

// AddProvider attaches the transport health of a network to the report.
func (t *Tracker) AddProvider(network string, p HealthReporter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.providers[network] = p
}

// Observe counts one result of the running pass.
func (t *Tracker) Observe(r domain.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.current[r.Network]
	if !ok {
		c = &passCounts{}
		t.current[r.Network] = c
	}
	c.results++
	if !r.OK() {
		c.failures++
	}
}

// FinishPass closes the running pass. Networks without results in it are
// recorded with zero counts.
func (t *Tracker) FinishPass(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, name := range t.networks {
		if c, ok := t.current[name]; ok {
			t.last[name] = *c
		} else {
			t.last[name] = passCounts{}
		}
	}
	clear(t.current)
	t.lastPassAt = at
}

// Report builds the health report of every network.
func (t *Tracker) Report() Report {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stale := t.isStale()
	report := Report{
		SystemStatus: StatusHealthy,
		LastPassAt:   t.lastPassAt,
		Networks:     make(map[string]NetworkHealth, len(t.networks)),
	}

	for _, name := range t.networks {
		c := t.last[name]
		health := NetworkHealth{
			Network:    name,
			Status:     StatusHealthy,
			Results:    c.results,
			Failures:   c.failures,
			LastPassAt: t.lastPassAt,
		}
		if c.results > 0 {
			health.ErrorRate = float64(c.failures) / float64(c.results)
		}

		switch {
		case stale:
			health.Status = StatusCritical
		case c.results > 0 && c.failures == c.results:
			health.Status = StatusCritical
		case c.failures > 0:
			health.Status = StatusDegraded
		}

		if p, ok := t.providers[name]; ok {
			if status, ok := p.Health(); ok {
				health.Provider = &status
			}
		}

		if health.Status.severity() > report.SystemStatus.severity() {
			report.SystemStatus = health.Status
		}
		report.Networks[name] = health
	}

	if stale {
		report.SystemStatus = StatusCritical
	}
	return report
}

// Status returns only the aggregated status.
func (t *Tracker) Status() SystemStatus {
	return t.Report().SystemStatus
}

// isStale must be called with mu held.
func (t *Tracker) isStale() bool {
	if t.staleAfter <= 0 {
		return false
	}
	since := t.started
	if !t.lastPassAt.IsZero() {
		since = t.lastPassAt
	}
	return t.now().Sub(since) > t.staleAfter
}
