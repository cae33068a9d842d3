/*
metrics.go - Prometheus instrumentation for the fuel ledger API

PURPOSE:
  Counts ledger append attempts by outcome so operations can alert on
  unusual rejection rates (a spike in over_capacity usually means a
  delivery was logged against the wrong tank).

METRICS:
  fuel_ledger_appends_total{outcome}   accepted | insufficient_fuel |
                                       over_capacity | conflict | rejected
  fuel_ledger_reversals_total          compensating entries appended

Registration is guarded by sync.Once so tests can construct multiple
handlers against the default registry.
*/
package api

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	appendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuel_ledger_appends_total",
			Help: "Ledger append attempts by outcome.",
		},
		[]string{"outcome"},
	)

	reversalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fuel_ledger_reversals_total",
			Help: "Compensating entries appended.",
		},
	)
)

func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(appendsTotal, reversalsTotal)
	})
}

const (
	outcomeAccepted     = "accepted"
	outcomeInsufficient = "insufficient_fuel"
	outcomeOverCapacity = "over_capacity"
	outcomeConflict     = "conflict"
	outcomeRejected     = "rejected"
)
