// Package exporter turns balance results into metrics, console lines and logs.
package exporter

import (
	"log/slog"

	"github.com/vietddude/balancewatch/internal/core/domain"
)

// Multi fans a result out to every observer, in order.
func Multi(observers ...domain.Observer) domain.Observer {
	return func(r domain.Result) {
		for _, observe := range observers {
			if observe != nil {
				observe(r)
			}
		}
	}
}

// LogFailures logs every failed query at warn level.
func LogFailures(log *slog.Logger) domain.Observer {
	if log == nil {
		log = slog.Default()
	}
	return func(r domain.Result) {
		if r.OK() {
			return
		}
		log.Warn("Failed to get balance",
			"network", r.Network,
			"address", r.AddressHex(),
			"name", r.AddressName,
			"token", r.Asset,
			"error", r.Err,
		)
	}
}
