package domain

// CostItem is one line of a bundle: unit price, unit costs and quantity.
type CostItem struct {
	Price           float64 `json:"price" validate:"gte=0"`
	Cogs            float64 `json:"cogs" validate:"gte=0"`
	ShippingCost    float64 `json:"shipping_cost" validate:"gte=0"`
	AdditionalCosts float64 `json:"additional_costs" validate:"gte=0"`
	Quantity        int     `json:"quantity" validate:"gte=1"`
}

// FeeSchedule is the per-shop payment processing fee.
type FeeSchedule struct {
	PaymentProcessingPct  float64 `json:"payment_processing_pct" validate:"gte=0,lte=100"`
	PaymentProcessingFlat float64 `json:"payment_processing_flat" validate:"gte=0"`
}

type MarginResult struct {
	EffectivePrice        float64 `json:"effective_price"`
	ProcessingFee         float64 `json:"processing_fee"`
	ContributionMargin    float64 `json:"contribution_margin"`
	ContributionMarginPct float64 `json:"contribution_margin_pct"`
	IsProfitable          bool    `json:"is_profitable"`
}

// ConversionPoint is one observed (discount, conversion rate) bucket.
type ConversionPoint struct {
	DiscountPct    float64 `json:"discount_pct"`
	ConversionRate float64 `json:"conversion_rate"`
	Views          int64   `json:"views"`
	Purchases      int64   `json:"purchases"`
}

// DiscountRecommendation is the revenue-maximizing pick.
type DiscountRecommendation struct {
	DiscountPct       float64 `json:"discount_pct"`
	ExpectedMarginPct float64 `json:"expected_margin_pct"`
	ExpectedRevenue   float64 `json:"expected_revenue"`
}
