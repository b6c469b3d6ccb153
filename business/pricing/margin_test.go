//go:build !integration

package pricing

import (
	"testing"

	"bundleBoost/domain"

	"github.com/stretchr/testify/assert"
)

var standardFee = domain.FeeSchedule{PaymentProcessingPct: 2.9, PaymentProcessingFlat: 0.3}

func TestCalculateBundleMargin_SingleItemTenPercent(t *testing.T) {
	items := []domain.CostItem{{Price: 100, Cogs: 40, ShippingCost: 5, Quantity: 1}}

	r := CalculateBundleMargin(items, 10, standardFee)

	assert.InDelta(t, 90.0, r.EffectivePrice, 1e-9)
	assert.InDelta(t, 2.91, r.ProcessingFee, 1e-9)
	assert.InDelta(t, 42.09, r.ContributionMargin, 1e-9)
	assert.InDelta(t, 46.77, r.ContributionMarginPct, 0.01)
	assert.True(t, r.IsProfitable)
}

func TestCalculateBundleMargin_QuantitiesMultiply(t *testing.T) {
	items := []domain.CostItem{
		{Price: 20, Cogs: 8, ShippingCost: 1, AdditionalCosts: 1, Quantity: 3},
		{Price: 50, Cogs: 25, Quantity: 1},
	}

	r := CalculateBundleMargin(items, 0, domain.FeeSchedule{})

	// 60 + 50 individual, 30 + 25 cost
	assert.InDelta(t, 110.0, r.EffectivePrice, 1e-9)
	assert.InDelta(t, 55.0, r.ContributionMargin, 1e-9)
	assert.InDelta(t, 50.0, r.ContributionMarginPct, 1e-9)
}

func TestCalculateBundleMargin_FullDiscountHasZeroPct(t *testing.T) {
	items := []domain.CostItem{{Price: 100, Cogs: 40, Quantity: 1}}

	r := CalculateBundleMargin(items, 100, standardFee)

	assert.Equal(t, 0.0, r.EffectivePrice)
	assert.Equal(t, 0.0, r.ContributionMarginPct)
	assert.InDelta(t, -40.3, r.ContributionMargin, 1e-9)
	assert.False(t, r.IsProfitable)
}

func TestCalculateBundleMargin_EmptyItems(t *testing.T) {
	r := CalculateBundleMargin(nil, 10, standardFee)

	assert.Equal(t, 0.0, r.EffectivePrice)
	assert.InDelta(t, 0.3, r.ProcessingFee, 1e-9)
	assert.InDelta(t, -0.3, r.ContributionMargin, 1e-9)
	assert.Equal(t, 0.0, r.ContributionMarginPct)
	assert.False(t, r.IsProfitable)
}

func TestCalculateBundleMargin_ClampsInvalidInputs(t *testing.T) {
	items := []domain.CostItem{{Price: 100, Cogs: -10, ShippingCost: -5, Quantity: 0}}

	// negative costs count as zero, quantity below one counts as one,
	// discounts outside [0, 100] are clamped
	below := CalculateBundleMargin(items, -20, domain.FeeSchedule{})
	assert.InDelta(t, 100.0, below.EffectivePrice, 1e-9)
	assert.InDelta(t, 100.0, below.ContributionMarginPct, 1e-9)

	above := CalculateBundleMargin(items, 150, domain.FeeSchedule{})
	assert.Equal(t, 0.0, above.EffectivePrice)
}

func TestCalculateBundleMargin_PctDecreasesWithDiscount(t *testing.T) {
	items := []domain.CostItem{
		{Price: 30, Cogs: 12, ShippingCost: 2, Quantity: 2},
		{Price: 45, Cogs: 20, AdditionalCosts: 1.5, Quantity: 1},
	}

	prev := CalculateBundleMargin(items, 0, standardFee).ContributionMarginPct
	for d := 1; d <= 50; d++ {
		cur := CalculateBundleMargin(items, float64(d), standardFee).ContributionMarginPct
		assert.Less(t, cur, prev, "discount %d", d)
		prev = cur
	}
}

func TestCalculateProductMargin(t *testing.T) {
	r := CalculateProductMargin(50, 20, 4, 1, standardFee)

	// fee = 1.45 + 0.3
	assert.InDelta(t, 50.0, r.EffectivePrice, 1e-9)
	assert.InDelta(t, 1.75, r.ProcessingFee, 1e-9)
	assert.InDelta(t, 23.25, r.ContributionMargin, 1e-9)
	assert.InDelta(t, 46.5, r.ContributionMarginPct, 1e-9)
	assert.True(t, r.IsProfitable)

	zero := CalculateProductMargin(0, 5, 0, 0, standardFee)
	assert.Equal(t, 0.0, zero.ContributionMarginPct)
	assert.False(t, zero.IsProfitable)

	clamped := CalculateProductMargin(10, -3, -1, -1, domain.FeeSchedule{})
	assert.InDelta(t, 10.0, clamped.ContributionMargin, 1e-9)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 46.77, RoundMoney(46.766666))
	assert.Equal(t, 2.91, RoundMoney(2.9100000000000001))
	assert.Equal(t, -0.3, RoundMoney(-0.3))
	assert.Equal(t, 0.0, RoundMoney(0))

	r := Rounded(domain.MarginResult{EffectivePrice: 89.999, ContributionMarginPct: 46.76666, IsProfitable: true})
	assert.Equal(t, 90.0, r.EffectivePrice)
	assert.Equal(t, 46.77, r.ContributionMarginPct)
	assert.True(t, r.IsProfitable)
}
