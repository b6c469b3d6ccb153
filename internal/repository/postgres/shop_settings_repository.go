package postgres

import (
	"context"
	"errors"
	"fmt"

	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopSettingsRepository struct {
	DB *gorm.DB
}

var _ shopconfig.SettingsRepository = (*ShopSettingsRepository)(nil)

func NewShopSettingsRepository(db *gorm.DB) *ShopSettingsRepository {
	return &ShopSettingsRepository{DB: db}
}

func (r *ShopSettingsRepository) GetSettings(ctx context.Context, shopID uint64) (domain.ShopSettings, bool, error) {
	var row domain.ShopSettings

	err := r.DB.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ShopSettings{}, false, nil
	}
	if err != nil {
		return domain.ShopSettings{}, false, fmt.Errorf("failed to get shop settings: %w", err)
	}

	return row, true, nil
}

func (r *ShopSettingsRepository) UpsertSettings(ctx context.Context, s domain.ShopSettings) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shop_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_processing_pct",
				"payment_processing_flat",
				"min_margin_pct",
				"max_products_per_bundle",
				"include_dead_stock",
				"auto_generate_bundles",
				"auto_optimize_discounts",
				"updated_at",
			}),
		}).
		Create(&s).Error
}

// ListShopIDs returns every shop with a settings row, optionally only those
// with the given automation column switched on.
func (r *ShopSettingsRepository) ListShopIDs(ctx context.Context, enabledColumn string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.ShopSettings{})
	switch enabledColumn {
	case "":
	case "auto_generate_bundles", "auto_optimize_discounts":
		q = q.Where(clause.Eq{Column: clause.Column{Name: enabledColumn}, Value: true})
	default:
		return nil, fmt.Errorf("unknown settings column %q", enabledColumn)
	}

	var ids []uint64
	if err := q.Order("shop_id").Pluck("shop_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	return ids, nil
}
