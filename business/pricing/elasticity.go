package pricing

import (
	"math"

	"bundleBoost/domain"
)

// Elasticity is a linear model conversionRate ≈ Intercept + Slope*discountPct.
type Elasticity struct {
	Intercept float64
	Slope     float64
}

// Predict returns the modelled conversion rate at d, clamped to [0, 1].
func (e Elasticity) Predict(discountPct float64) float64 {
	return clampUnit(e.Intercept + e.Slope*discountPct)
}

// FitElasticity fits the model by ordinary least squares. ok is false when
// the points cover fewer than two distinct discount levels, in which case a
// slope cannot be estimated.
func FitElasticity(points []domain.ConversionPoint) (Elasticity, bool) {
	if distinctDiscounts(points) < 2 {
		return Elasticity{}, false
	}

	n := float64(len(points))
	meanX, meanY := 0.0, 0.0
	for _, p := range points {
		meanX += clampPct(p.DiscountPct)
		meanY += clampUnit(p.ConversionRate)
	}
	meanX /= n
	meanY /= n

	sxx, sxy := 0.0, 0.0
	for _, p := range points {
		dx := clampPct(p.DiscountPct) - meanX
		sxx += dx * dx
		sxy += dx * (clampUnit(p.ConversionRate) - meanY)
	}
	if sxx == 0 {
		return Elasticity{}, false
	}

	slope := sxy / sxx
	return Elasticity{
		Intercept: meanY - slope*meanX,
		Slope:     slope,
	}, true
}

func distinctDiscounts(points []domain.ConversionPoint) int {
	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		seen[clampPct(p.DiscountPct)] = struct{}{}
	}
	return len(seen)
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
