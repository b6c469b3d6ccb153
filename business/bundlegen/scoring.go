package bundlegen

import "math"

// ScoreInput carries the three signals a candidate is ranked on.
type ScoreInput struct {
	AnchorAvgDailySales      float64
	CompanionDaysWithoutSale []int
	EstimatedMarginPct       float64
}

// Score = wP*popularity + wS*staleness + wM*margin, each signal scaled by its
// soft cap into [0, 1]. Used only for ranking.
func (o Options) Score(in ScoreInput) float64 {
	popularity := normalize(in.AnchorAvgDailySales, o.PopularityCap)
	staleness := normalize(meanDays(in.CompanionDaysWithoutSale), o.StalenessCapDays)
	margin := normalize(in.EstimatedMarginPct, o.MarginCapPct)

	return o.Weights.Popularity*popularity +
		o.Weights.Staleness*staleness +
		o.Weights.Margin*margin
}

func meanDays(days []int) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0
	for _, d := range days {
		sum += max(d, 0)
	}
	return float64(sum) / float64(len(days))
}

// normalize maps v onto [0, 1] against a positive cap.
func normalize(v, limit float64) float64 {
	if limit <= 0 || v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(v/limit, 1)
}
