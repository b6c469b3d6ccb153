package bundlegen

import (
	"bundleBoost/business/pricing"
	"bundleBoost/pkg/config"
)

// Weights are the relative importance of each scoring signal. They are
// business-tunable and need not sum to one.
type Weights struct {
	Popularity float64
	Staleness  float64
	Margin     float64
}

type Options struct {
	Weights Weights

	// soft caps that normalise each signal into [0, 1]
	PopularityCap    float64
	StalenessCapDays float64
	MarginCapPct     float64

	MaxCandidates   int
	BestsellerShare float64

	Searcher pricing.Searcher
}

const (
	defaultWeightPopularity = 0.4
	defaultWeightStaleness  = 0.3
	defaultWeightMargin     = 0.3
	defaultPopularityCap    = 10.0
	defaultStalenessCap     = 180.0
	defaultMarginCap        = 50.0
	defaultMaxCandidates    = 10
	defaultBestsellerShare  = 0.2
)

func DefaultOptions() Options {
	return Options{
		Weights: Weights{
			Popularity: defaultWeightPopularity,
			Staleness:  defaultWeightStaleness,
			Margin:     defaultWeightMargin,
		},
		PopularityCap:    defaultPopularityCap,
		StalenessCapDays: defaultStalenessCap,
		MarginCapPct:     defaultMarginCap,
		MaxCandidates:    defaultMaxCandidates,
		BestsellerShare:  defaultBestsellerShare,
		Searcher:         pricing.DefaultSearcher(),
	}
}

// OptionsFromEngine maps the validated engine tuning file onto Options.
func OptionsFromEngine(ec config.EngineConfig) Options {
	return Options{
		Weights: Weights{
			Popularity: ec.Weights.Popularity,
			Staleness:  ec.Weights.Staleness,
			Margin:     ec.Weights.Margin,
		},
		PopularityCap:    ec.PopularityCap,
		StalenessCapDays: ec.StalenessCapDays,
		MarginCapPct:     ec.MarginCapPct,
		MaxCandidates:    ec.MaxCandidates,
		BestsellerShare:  ec.BestsellerShare,
		Searcher:         pricing.NewSearcher(ec.MaxDiscountPct),
	}
}
