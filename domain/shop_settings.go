package domain

import "time"

// ShopSettings mirrors the per-shop settings row. Every tunable column is
// nullable; defaults are applied once when converting to engine settings.
type ShopSettings struct {
	ShopID                uint64    `gorm:"column:shop_id;primaryKey" json:"shop_id"`
	PaymentProcessingPct  *float64  `gorm:"column:payment_processing_pct;type:numeric" json:"payment_processing_pct"`
	PaymentProcessingFlat *float64  `gorm:"column:payment_processing_flat;type:numeric" json:"payment_processing_flat"`
	MinMarginPct          *float64  `gorm:"column:min_margin_pct;type:numeric" json:"min_margin_pct"`
	MaxProductsPerBundle  *int      `gorm:"column:max_products_per_bundle" json:"max_products_per_bundle"`
	IncludeDeadStock      *bool     `gorm:"column:include_dead_stock" json:"include_dead_stock"`
	AutoGenerateBundles   *bool     `gorm:"column:auto_generate_bundles" json:"auto_generate_bundles"`
	AutoOptimizeDiscounts *bool     `gorm:"column:auto_optimize_discounts" json:"auto_optimize_discounts"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ShopSettings) TableName() string {
	return "shop_settings"
}
