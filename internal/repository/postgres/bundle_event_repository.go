package postgres

import (
	"context"
	"fmt"
	"time"

	"bundleBoost/business/optimization"
	"bundleBoost/domain"

	"gorm.io/gorm"
)

type BundleEventRepository struct {
	DB *gorm.DB
}

var (
	_ optimization.EventCounter             = (*BundleEventRepository)(nil)
	_ optimization.DiscountChangeRepository = (*BundleEventRepository)(nil)
)

func NewBundleEventRepository(db *gorm.DB) *BundleEventRepository {
	return &BundleEventRepository{DB: db}
}

type eventCountRow struct {
	Views     int64 `gorm:"column:views"`
	Purchases int64 `gorm:"column:purchases"`
}

// CountEvents counts views and purchases of a bundle in [from, to) with one
// scan over idx_bundle_events_lookup.
func (r *BundleEventRepository) CountEvents(ctx context.Context, bundleID string, from, to time.Time) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, fmt.Errorf("context error: %w", err)
	}

	var row eventCountRow
	err := r.DB.WithContext(ctx).
		Model(&domain.BundleEvent{}).
		Select(
			"COUNT(*) FILTER (WHERE event_type = ?) AS views, COUNT(*) FILTER (WHERE event_type = ?) AS purchases",
			domain.BundleEventView, domain.BundleEventPurchase,
		).
		Where("bundle_id = ? AND created_at >= ? AND created_at < ?", bundleID, from, to).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count bundle events: %w", err)
	}

	return row.Views, row.Purchases, nil
}

func (r *BundleEventRepository) SaveEvent(ctx context.Context, event domain.BundleEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save bundle event: %w", err)
	}

	return nil
}

// ListByBundle returns the bundle's discount log, oldest first.
func (r *BundleEventRepository) ListByBundle(ctx context.Context, bundleID string) ([]domain.BundleDiscountChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var changes []domain.BundleDiscountChange
	err := r.DB.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Order("applied_at").
		Find(&changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list discount changes: %w", err)
	}

	return changes, nil
}
