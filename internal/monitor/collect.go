package monitor

import (
	"context"
	"iter"
	"time"

	"github.com/vietddude/balancewatch/internal/core/domain"
)

// PassStats summarises one collection pass.
type PassStats struct {
	Results  int
	Failures int
	Duration time.Duration
}

// Collect queries every (network, address, asset) combination in order and
// hands each outcome to observe before issuing the next query. Failed
// queries are reported as results; they never stop the pass. A cancelled
// ctx ends the pass early without further results.
func (m *Monitor) Collect(ctx context.Context, observe domain.Observer) PassStats {
	start := time.Now()
	var stats PassStats

	for r := range m.Results(ctx) {
		stats.Results++
		if !r.OK() {
			stats.Failures++
		}
		observe(r)
	}

	stats.Duration = time.Since(start)
	m.log.Debug("Collected balances",
		"results", stats.Results,
		"failures", stats.Failures,
		"duration", stats.Duration,
	)
	return stats
}

// Results yields the same sequence as Collect, lazily. Each iteration runs
// one pass; breaking out of the loop or cancelling ctx stops querying.
func (m *Monitor) Results(ctx context.Context) iter.Seq[domain.Result] {
	return func(yield func(domain.Result) bool) {
		for _, network := range m.networks {
			for _, address := range network.Addresses {
				if address.MonitorNative {
					if ctx.Err() != nil {
						return
					}
					balance, err := network.Client.NativeBalance(ctx, address.Address)
					r := newResult(network.Name, address, domain.NativeAsset, domain.AssetStandardNative)
					r.SetOutcome(balance, err)
					if !yield(r) {
						return
					}
				}

				for _, token := range address.Tokens {
					if ctx.Err() != nil {
						return
					}
					balance, err := token.Contract.BalanceOf(ctx, address.Address)
					r := newResult(network.Name, address, token.Name, domain.AssetStandardERC20)
					r.SetOutcome(balance, err)
					if !yield(r) {
						return
					}
				}
			}
		}
	}
}

func newResult(network string, a AddressToMonitor, asset string, standard domain.AssetStandard) domain.Result {
	return domain.Result{
		Network:     network,
		AddressName: a.Name,
		Address:     a.Address,
		Asset:       asset,
		Standard:    standard,
		Tag:         a.Tag,
	}
}
