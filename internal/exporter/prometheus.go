package exporter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vietddude/balancewatch/internal/core/domain"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Prometheus exports balances and query outcomes to a registry.
type Prometheus struct {
	// Balance is the latest known balance of every watched asset.
	Balance *prometheus.GaugeVec

	// Attempts counts queries by outcome.
	Attempts *prometheus.CounterVec

	// LastUpdate is the unix time of the last finished pass.
	LastUpdate prometheus.Gauge
}

// NewPrometheus registers the balance metrics on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		Balance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "etherbalance_balance",
				Help: "The ether or IERC20 balance of an ethereum address.",
			},
			[]string{"address_name", "token_name", "address", "tag", "network"},
		),
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "success_counter",
				Help: "Success/Failure counts",
			},
			[]string{"result", "address", "network"},
		),
		LastUpdate: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "etherbalance_last_update",
				Help: "Unix time of last update of balances.",
			},
		),
	}
}

// Observe records one result. A failed query keeps the previous balance.
func (p *Prometheus) Observe(r domain.Result) {
	address := r.AddressHex()
	if !r.OK() {
		p.Attempts.WithLabelValues(resultFailure, address, r.Network).Inc()
		return
	}

	p.Balance.WithLabelValues(r.AddressName, r.Asset, address, r.Tag, r.Network).
		Set(domain.BalanceToFloat64(r.Balance))
	p.Attempts.WithLabelValues(resultSuccess, address, r.Network).Inc()
}

// MarkPass stores the time a pass finished.
func (p *Prometheus) MarkPass(t time.Time) {
	p.LastUpdate.Set(float64(t.UnixNano()) / float64(time.Second))
}
