package pricing

import (
	"math"

	"bundleBoost/domain"
)

const (
	defaultMaxDiscountPct = 50

	// MinElasticityPoints is the smallest history the revenue search accepts.
	MinElasticityPoints = 3
)

// Searcher looks for discounts over the integer range [0, MaxDiscountPct].
type Searcher struct {
	MaxDiscountPct int
}

func NewSearcher(maxDiscountPct int) Searcher {
	if maxDiscountPct <= 0 || maxDiscountPct > 100 {
		maxDiscountPct = defaultMaxDiscountPct
	}
	return Searcher{MaxDiscountPct: maxDiscountPct}
}

func DefaultSearcher() Searcher {
	return NewSearcher(defaultMaxDiscountPct)
}

// FindOptimalDiscount returns the largest whole-percent discount whose bundle
// margin stays at or above minMarginPct. Zero means no discount is viable.
//
// Margin percentage is non-increasing in the discount, so the feasible set is
// a prefix of [0, max] and a binary search finds its end.
func (s Searcher) FindOptimalDiscount(items []domain.CostItem, fee domain.FeeSchedule, minMarginPct float64) float64 {
	feasible := func(d int) bool {
		return CalculateBundleMargin(items, float64(d), fee).ContributionMarginPct >= minMarginPct
	}

	if !feasible(0) {
		return 0
	}

	lo, hi := 0, s.maxPct()
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if feasible(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return float64(lo)
}

// FindRevenueMaximizingDiscount picks the discount with the highest expected
// revenue (effective price x predicted conversion rate) among those keeping
// the margin at or above minMarginPct. allCosts is the bundle's total
// variable cost. ok is false when history is too short or no discount clears
// the margin floor.
func (s Searcher) FindRevenueMaximizingDiscount(history []domain.ConversionPoint, basePrice, allCosts, minMarginPct float64) (domain.DiscountRecommendation, bool) {
	if len(history) < MinElasticityPoints || basePrice <= 0 || math.IsNaN(basePrice) {
		return domain.DiscountRecommendation{}, false
	}
	allCosts = nonNegative(allCosts)

	model, fitted := FitElasticity(history)
	if !fitted {
		return s.bestObservedPoint(history, basePrice, allCosts, minMarginPct)
	}

	var (
		best  domain.DiscountRecommendation
		found bool
	)
	for d := 0; d <= s.maxPct(); d++ {
		discount := float64(d)
		marginPct := discountMarginPct(basePrice, allCosts, discount)
		if marginPct < minMarginPct {
			continue
		}

		revenue := effectiveAt(basePrice, discount) * model.Predict(discount)
		// strict comparison keeps the lower discount on ties
		if !found || revenue > best.ExpectedRevenue {
			best = domain.DiscountRecommendation{
				DiscountPct:       discount,
				ExpectedMarginPct: marginPct,
				ExpectedRevenue:   revenue,
			}
			found = true
		}
	}

	return best, found
}

// bestObservedPoint is the fallback when no slope can be fitted: use the
// observation with the highest conversion rate, provided it clears the floor.
func (s Searcher) bestObservedPoint(history []domain.ConversionPoint, basePrice, allCosts, minMarginPct float64) (domain.DiscountRecommendation, bool) {
	bestIdx := -1
	for i, p := range history {
		if bestIdx < 0 || clampUnit(p.ConversionRate) > clampUnit(history[bestIdx].ConversionRate) {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return domain.DiscountRecommendation{}, false
	}

	discount := math.Round(clampPct(history[bestIdx].DiscountPct))
	if discount > float64(s.maxPct()) {
		discount = float64(s.maxPct())
	}

	marginPct := discountMarginPct(basePrice, allCosts, discount)
	if marginPct < minMarginPct {
		return domain.DiscountRecommendation{}, false
	}

	return domain.DiscountRecommendation{
		DiscountPct:       discount,
		ExpectedMarginPct: marginPct,
		ExpectedRevenue:   effectiveAt(basePrice, discount) * clampUnit(history[bestIdx].ConversionRate),
	}, true
}

func (s Searcher) maxPct() int {
	if s.MaxDiscountPct <= 0 || s.MaxDiscountPct > 100 {
		return defaultMaxDiscountPct
	}
	return s.MaxDiscountPct
}

func effectiveAt(basePrice, discountPct float64) float64 {
	return basePrice * (1 - discountPct/100)
}

func discountMarginPct(basePrice, allCosts, discountPct float64) float64 {
	eff := effectiveAt(basePrice, discountPct)
	if eff <= 0 {
		return 0
	}
	return (eff - allCosts) / eff * 100
}
