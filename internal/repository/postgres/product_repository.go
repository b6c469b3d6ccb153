package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bundleBoost/business/bundlegen"
	"bundleBoost/business/optimization"
	"bundleBoost/business/product"
	"bundleBoost/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	DB *gorm.DB
}

var (
	_ product.ProductRepository      = (*ProductRepository)(nil)
	_ bundlegen.ProductRepository    = (*ProductRepository)(nil)
	_ optimization.ProductRepository = (*ProductRepository)(nil)
)

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var p domain.Product

	err := r.DB.WithContext(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return p, nil
}

// FindActiveWithCost returns the shop's ACTIVE products that carry a cost
// basis, the generator's whole input catalog.
func (r *ProductRepository) FindActiveWithCost(ctx context.Context, shopID uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Where("shop_id = ? AND status = ? AND cost_known = ?", shopID, domain.ProductStatusActive, true).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, shopID uint64, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shop_id"}, {Name: "external_product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"status",
				"price",
				"cogs",
				"shipping_cost",
				"additional_costs",
				"cost_known",
				"inventory_quantity",
				"avg_daily_sales",
				"days_without_sale",
				"is_dead_stock",
				"margin_amount",
				"margin_pct",
				"updated_at",
			}),
		}).
		Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}
