package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bundleBoost/business/experiment"
	"bundleBoost/domain"

	"gorm.io/gorm"
)

type ABTestRepository struct {
	DB *gorm.DB
}

var _ experiment.TestRepository = (*ABTestRepository)(nil)

func NewABTestRepository(db *gorm.DB) *ABTestRepository {
	return &ABTestRepository{DB: db}
}

func (r *ABTestRepository) Create(ctx context.Context, test *domain.ABTest) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create ab test: %w", err)
	}

	return nil
}

func (r *ABTestRepository) FindByID(ctx context.Context, id string) (domain.ABTest, error) {
	if err := ctx.Err(); err != nil {
		return domain.ABTest{}, fmt.Errorf("context error: %w", err)
	}

	var test domain.ABTest
	err := r.DB.WithContext(ctx).First(&test, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ABTest{}, domain.ErrTestNotFound
		}
		return domain.ABTest{}, fmt.Errorf("failed to find ab test: %w", err)
	}

	return test, nil
}

// MarkRunning is a compare-and-set on status so two concurrent starts cannot
// both succeed.
func (r *ABTestRepository) MarkRunning(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.ABTest{}).
		Where("id = ? AND status = ?", id, domain.ABTestStatusDraft).
		Updates(map[string]interface{}{
			"status":     domain.ABTestStatusRunning,
			"started_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to start ab test: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *ABTestRepository) Complete(ctx context.Context, test domain.ABTest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var winner interface{}
	if test.WinnerArm != nil {
		winner = string(*test.WinnerArm)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.ABTest{}).
		Where("id = ? AND status = ?", test.ID, domain.ABTestStatusRunning).
		Updates(map[string]interface{}{
			"status":              domain.ABTestStatusCompleted,
			"control_impressions": test.ControlImpressions,
			"control_conversions": test.ControlConversions,
			"control_revenue":     test.ControlRevenue,
			"variant_impressions": test.VariantImpressions,
			"variant_conversions": test.VariantConversions,
			"variant_revenue":     test.VariantRevenue,
			"winner_arm":          winner,
			"confidence":          test.Confidence,
			"ended_at":            test.EndedAt,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete ab test: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
