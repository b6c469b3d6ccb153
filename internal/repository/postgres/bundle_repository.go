package postgres

import (
	"context"
	"errors"
	"fmt"

	"bundleBoost/business/bundlegen"
	"bundleBoost/business/optimization"
	"bundleBoost/domain"

	"gorm.io/gorm"
)

type BundleRepository struct {
	DB *gorm.DB
}

var (
	_ bundlegen.BundleRepository    = (*BundleRepository)(nil)
	_ optimization.BundleRepository = (*BundleRepository)(nil)
)

func NewBundleRepository(db *gorm.DB) *BundleRepository {
	return &BundleRepository{DB: db}
}

// ReplaceAutoBundles archives the shop's previous generation and inserts the
// new one, items included. Either both happen or neither does.
func (r *BundleRepository) ReplaceAutoBundles(ctx context.Context, shopID uint64, bundles []domain.Bundle) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Bundle{}).
			Where("shop_id = ? AND source = ? AND status <> ?", shopID, domain.BundleSourceAuto, domain.BundleStatusArchived).
			Update("status", domain.BundleStatusArchived).Error
		if err != nil {
			return fmt.Errorf("failed to archive auto bundles: %w", err)
		}

		if len(bundles) == 0 {
			return nil
		}

		if err := tx.Create(&bundles).Error; err != nil {
			return fmt.Errorf("failed to insert bundles: %w", err)
		}
		return nil
	})
}

func (r *BundleRepository) FindActiveByShop(ctx context.Context, shopID uint64) ([]domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bundles []domain.Bundle
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ? AND status = ?", shopID, domain.BundleStatusActive).
		Order("created_at").
		Find(&bundles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active bundles: %w", err)
	}

	return bundles, nil
}

func (r *BundleRepository) FindByID(ctx context.Context, id string) (domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bundle{}, fmt.Errorf("context error: %w", err)
	}

	var b domain.Bundle
	err := r.DB.WithContext(ctx).Preload("Items").First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Bundle{}, domain.ErrBundleNotFound
		}
		return domain.Bundle{}, fmt.Errorf("failed to find bundle: %w", err)
	}

	return b, nil
}

// ApplyDiscount writes the new discount and margin and appends the change to
// the bundle's discount log in one transaction.
func (r *BundleRepository) ApplyDiscount(ctx context.Context, b domain.Bundle, change domain.BundleDiscountChange) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Bundle{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"discount_pct":            b.DiscountPct,
				"effective_price":         b.EffectivePrice,
				"contribution_margin":     b.ContributionMargin,
				"contribution_margin_pct": b.ContributionMarginPct,
				"updated_at":              b.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update bundle discount: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrBundleNotFound
		}

		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("failed to record discount change: %w", err)
		}
		return nil
	})
}
