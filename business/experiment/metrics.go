package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ExperimentEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_events_total",
			Help: "Count of recorded experiment metrics by arm and metric.",
		},
		[]string{"arm", "metric"},
	)

	ExperimentAssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_assignments_total",
			Help: "Count of session assignments by arm.",
		},
		[]string{"arm"},
	)

	ExperimentTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_transitions_total",
			Help: "Count of experiment status transitions by target status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(ExperimentEventsTotal, ExperimentAssignmentsTotal, ExperimentTransitionsTotal)
}
