package shopconfig

import (
	"context"

	"bundleBoost/domain"
)

// Config is the fully resolved per-shop configuration the engines consume.
type Config struct {
	ShopID                uint64             `json:"shop_id"`
	Fee                   domain.FeeSchedule `json:"fee"`
	MinMarginPct          float64            `json:"min_margin_pct"`
	MaxProductsPerBundle  int                `json:"max_products_per_bundle"`
	IncludeDeadStock      bool               `json:"include_dead_stock"`
	AutoGenerateBundles   bool               `json:"auto_generate_bundles"`
	AutoOptimizeDiscounts bool               `json:"auto_optimize_discounts"`
}

const (
	defaultPaymentProcessingPct  = 2.9
	defaultPaymentProcessingFlat = 0.30
	defaultMinMarginPct          = 20.0
	defaultMaxProductsPerBundle  = 3
	defaultIncludeDeadStock      = true
	defaultAutoGenerateBundles   = false
	defaultAutoOptimizeDiscounts = false

	// a bundle needs an anchor plus at least one companion
	minProductsPerBundle = 2
)

func DefaultConfig(shopID uint64) Config {
	return Config{
		ShopID: shopID,
		Fee: domain.FeeSchedule{
			PaymentProcessingPct:  defaultPaymentProcessingPct,
			PaymentProcessingFlat: defaultPaymentProcessingFlat,
		},
		MinMarginPct:          defaultMinMarginPct,
		MaxProductsPerBundle:  defaultMaxProductsPerBundle,
		IncludeDeadStock:      defaultIncludeDeadStock,
		AutoGenerateBundles:   defaultAutoGenerateBundles,
		AutoOptimizeDiscounts: defaultAutoOptimizeDiscounts,
	}
}

// read per-shop settings row from DB.
type SettingsRepository interface {
	GetSettings(ctx context.Context, shopID uint64) (domain.ShopSettings, bool, error)
	UpsertSettings(ctx context.Context, settings domain.ShopSettings) error
}
