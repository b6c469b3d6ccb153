package bundlegen

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GenerationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundlegen_runs_total",
			Help: "Count of bundle generation runs by outcome.",
		},
		[]string{"outcome"},
	)

	GeneratedCandidatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bundlegen_candidates_total",
			Help: "Count of bundle candidates persisted as DRAFT bundles.",
		},
	)

	SkippedAnchorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundlegen_skipped_anchors_total",
			Help: "Count of anchors skipped during generation by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(GenerationRunsTotal, GeneratedCandidatesTotal, SkippedAnchorsTotal)
}
