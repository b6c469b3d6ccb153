package experiment

import (
	"math"

	"bundleBoost/domain"
)

const (
	defaultMinImpressionsPerArm = 30
	defaultConfidenceLevel      = 0.95
)

// Thresholds gate when a verdict may name a winner.
type Thresholds struct {
	MinImpressionsPerArm int64
	ConfidenceLevel      float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinImpressionsPerArm: defaultMinImpressionsPerArm,
		ConfidenceLevel:      defaultConfidenceLevel,
	}
}

// atLeastDefault raises looser thresholds to the defaults. A configuration
// may demand more evidence than 30 impressions at 95% but never less.
func (th Thresholds) atLeastDefault() Thresholds {
	if th.MinImpressionsPerArm < defaultMinImpressionsPerArm {
		th.MinImpressionsPerArm = defaultMinImpressionsPerArm
	}
	if th.ConfidenceLevel < defaultConfidenceLevel || th.ConfidenceLevel >= 1 || math.IsNaN(th.ConfidenceLevel) {
		th.ConfidenceLevel = defaultConfidenceLevel
	}
	return th
}

// CalculateWinner runs a pooled two-proportion z-test of variant against
// control. Winner stays nil unless both arms have enough impressions and the
// two-tailed confidence reaches the threshold.
func CalculateWinner(c domain.ABTestCounters, th Thresholds) domain.Verdict {
	th = th.atLeastDefault()
	n1, n2 := c.ControlImpressions, c.VariantImpressions
	if n1 < th.MinImpressionsPerArm || n2 < th.MinImpressionsPerArm || n1 <= 0 || n2 <= 0 {
		return domain.Verdict{}
	}

	p1 := float64(c.ControlConversions) / float64(n1)
	p2 := float64(c.VariantConversions) / float64(n2)

	pooled := float64(c.ControlConversions+c.VariantConversions) / float64(n1+n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(n1) + 1/float64(n2)))
	if se == 0 || math.IsNaN(se) {
		return domain.Verdict{}
	}

	z := (p2 - p1) / se
	confidence := TwoTailedConfidence(z)

	if confidence < th.ConfidenceLevel {
		return domain.Verdict{Confidence: confidence}
	}

	winner := domain.ArmControl
	if z > 0 {
		winner = domain.ArmVariant
	}
	return domain.Verdict{Winner: &winner, Confidence: confidence}
}

// TwoTailedConfidence is P(|Z| < |z|) for a standard normal Z.
func TwoTailedConfidence(z float64) float64 {
	return 2*normalCDF(math.Abs(z)) - 1
}

// normalCDF uses Abramowitz and Stegun 7.1.26, accurate to about 1.5e-7.
func normalCDF(x float64) float64 {
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
