package pricing

import (
	"math"

	"bundleBoost/domain"

	"github.com/shopspring/decimal"
)

// CalculateProductMargin computes the contribution margin of a single unit
// sold at full price.
func CalculateProductMargin(price, cogs, shippingCost, additionalCosts float64, fee domain.FeeSchedule) domain.MarginResult {
	price = nonNegative(price)
	cost := nonNegative(cogs) + nonNegative(shippingCost) + nonNegative(additionalCosts)

	return marginAt(price, cost, fee)
}

// CalculateBundleMargin computes the contribution margin of a bundle sold at
// bundleDiscountPct off the sum of its item prices.
func CalculateBundleMargin(items []domain.CostItem, bundleDiscountPct float64, fee domain.FeeSchedule) domain.MarginResult {
	effectivePrice := IndividualTotal(items) * (1 - clampPct(bundleDiscountPct)/100)
	if effectivePrice < 0 {
		effectivePrice = 0
	}

	return marginAt(effectivePrice, TotalCost(items), fee)
}

// IndividualTotal is the undiscounted price of all items.
func IndividualTotal(items []domain.CostItem) float64 {
	total := 0.0
	for _, it := range items {
		total += nonNegative(it.Price) * float64(quantity(it.Quantity))
	}
	return total
}

// TotalCost is the variable cost of all items, excluding processing fees.
func TotalCost(items []domain.CostItem) float64 {
	total := 0.0
	for _, it := range items {
		total += (nonNegative(it.Cogs) + nonNegative(it.ShippingCost) + nonNegative(it.AdditionalCosts)) * float64(quantity(it.Quantity))
	}
	return total
}

func marginAt(effectivePrice, cost float64, fee domain.FeeSchedule) domain.MarginResult {
	processingFee := ProcessingFee(effectivePrice, fee)
	margin := effectivePrice - cost - processingFee

	marginPct := 0.0
	if effectivePrice > 0 {
		marginPct = margin / effectivePrice * 100
	}

	return domain.MarginResult{
		EffectivePrice:        effectivePrice,
		ProcessingFee:         processingFee,
		ContributionMargin:    margin,
		ContributionMarginPct: marginPct,
		IsProfitable:          margin > 0,
	}
}

// ProcessingFee is price * pct/100 + flat.
func ProcessingFee(price float64, fee domain.FeeSchedule) float64 {
	return nonNegative(price)*clampPct(fee.PaymentProcessingPct)/100 + nonNegative(fee.PaymentProcessingFlat)
}

// RoundMoney rounds a monetary amount to cents, half away from zero.
func RoundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Rounded returns a copy of r with every figure rounded to two decimals,
// the precision the numeric columns store.
func Rounded(r domain.MarginResult) domain.MarginResult {
	return domain.MarginResult{
		EffectivePrice:        RoundMoney(r.EffectivePrice),
		ProcessingFee:         RoundMoney(r.ProcessingFee),
		ContributionMargin:    RoundMoney(r.ContributionMargin),
		ContributionMarginPct: RoundMoney(r.ContributionMarginPct),
		IsProfitable:          r.IsProfitable,
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func clampPct(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// quantity treats anything below one unit as a single unit.
func quantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
