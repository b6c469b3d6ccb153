package experiment

import "math"

// Interval is a closed range on [0, 1].
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// WilsonInterval bounds an arm's conversion rate at the given confidence.
// With x successes in n trials and critical value z:
//
//	centre = (x + z²/2) / (n + z²)
//	half   = z·√n / (n + z²) · √(p̂(1-p̂) + z²/4n)
func WilsonInterval(successes, trials int64, confidence float64) Interval {
	if trials <= 0 {
		return Interval{}
	}
	x := float64(min(max(successes, 0), trials))
	n := float64(trials)
	rate := x / n

	z := ZScore(confidence)
	zz := z * z
	scale := n + zz

	centre := (x + zz/2) / scale
	half := z * math.Sqrt(n) / scale * math.Sqrt(rate*(1-rate)+zz/(4*n))

	return Interval{
		Lower: clamp01(centre - half),
		Upper: clamp01(centre + half),
	}
}

// ZScore is the z for which TwoTailedConfidence(z) equals confidence.
// Found by bisection over normalCDF.
func ZScore(confidence float64) float64 {
	if confidence <= 0 || math.IsNaN(confidence) {
		return 0
	}
	confidence = math.Min(confidence, 0.999999)

	lo, hi := 0.0, 8.0
	for range 60 {
		mid := (lo + hi) / 2
		if TwoTailedConfidence(mid) < confidence {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
