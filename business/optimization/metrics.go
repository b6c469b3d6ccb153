package optimization

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OptimizationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimization_runs_total",
			Help: "Count of per-shop discount optimization runs by outcome.",
		},
		[]string{"outcome"},
	)

	OptimizationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimization_bundle_outcomes_total",
			Help: "Count of per-bundle optimization outcomes by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(OptimizationRunsTotal, OptimizationOutcomesTotal)
}
