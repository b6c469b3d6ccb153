package shopconfig

import (
	"errors"
	"fmt"

	"bundleBoost/domain"
)

// Resolve applies defaults to every unset column and clamps out-of-range
// values, so nothing downstream needs to null-check.
func Resolve(row domain.ShopSettings) Config {
	cfg := DefaultConfig(row.ShopID)

	if row.PaymentProcessingPct != nil && *row.PaymentProcessingPct >= 0 {
		cfg.Fee.PaymentProcessingPct = min(*row.PaymentProcessingPct, 100)
	}
	if row.PaymentProcessingFlat != nil && *row.PaymentProcessingFlat >= 0 {
		cfg.Fee.PaymentProcessingFlat = *row.PaymentProcessingFlat
	}
	if row.MinMarginPct != nil {
		cfg.MinMarginPct = *row.MinMarginPct
	}
	if row.MaxProductsPerBundle != nil {
		cfg.MaxProductsPerBundle = max(*row.MaxProductsPerBundle, minProductsPerBundle)
	}
	if row.IncludeDeadStock != nil {
		cfg.IncludeDeadStock = *row.IncludeDeadStock
	}
	if row.AutoGenerateBundles != nil {
		cfg.AutoGenerateBundles = *row.AutoGenerateBundles
	}
	if row.AutoOptimizeDiscounts != nil {
		cfg.AutoOptimizeDiscounts = *row.AutoOptimizeDiscounts
	}

	return cfg
}

// Validate rejects rows an operator could not have meant. Resolve still
// clamps whatever reaches it from the database directly.
func Validate(row domain.ShopSettings) error {
	if row.ShopID == 0 {
		return errors.New("shop_id is required")
	}
	if v := row.PaymentProcessingPct; v != nil && (*v < 0 || *v > 100) {
		return errors.New("payment_processing_pct must be between 0 and 100")
	}
	if v := row.PaymentProcessingFlat; v != nil && *v < 0 {
		return errors.New("payment_processing_flat cannot be negative")
	}
	if v := row.MinMarginPct; v != nil && (*v < 0 || *v >= 100) {
		return errors.New("min_margin_pct must be in [0, 100)")
	}
	if v := row.MaxProductsPerBundle; v != nil && *v < minProductsPerBundle {
		return fmt.Errorf("max_products_per_bundle must be at least %d", minProductsPerBundle)
	}
	return nil
}
