package product

import (
	"context"
	"errors"
	"fmt"

	"bundleBoost/business/pricing"
	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"
	"bundleBoost/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	// Upsert inserts or updates by (shop_id, external_product_id) and fills
	// in the stored ID.
	Upsert(ctx context.Context, product *domain.Product) error
}

type ShopConfigLoader interface {
	Load(ctx context.Context, shopID uint64) (shopconfig.Config, error)
}

// ProductMargin is the full-price unit margin of one product.
type ProductMargin struct {
	ProductID uint64 `json:"product_id"`
	ShopID    uint64 `json:"shop_id"`
	CostKnown bool   `json:"cost_known"`
	domain.MarginResult
}

type productService struct {
	productRepo ProductRepository
	cfgLoader   ShopConfigLoader
}

func NewProductService(productRepo ProductRepository, cfgLoader ShopConfigLoader) *productService {
	return &productService{
		productRepo: productRepo,
		cfgLoader:   cfgLoader,
	}
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", "product_id", id, "error", err)
		return nil, err
	}

	return &product, nil
}

// GetProductMargin prices one unit at full price against the shop's fee
// schedule.
func (s *productService) GetProductMargin(ctx context.Context, id uint64) (*ProductMargin, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := s.cfgLoader.Load(ctx, product.ShopID)
	if err != nil {
		logger.Error("failed to load shop config", "shop_id", product.ShopID, "error", err)
		return nil, err
	}

	margin := pricing.CalculateProductMargin(product.Price, product.Cogs, product.ShippingCost, product.AdditionalCosts, cfg.Fee)

	return &ProductMargin{
		ProductID:    product.ID,
		ShopID:       product.ShopID,
		CostKnown:    product.CostKnown,
		MarginResult: pricing.Rounded(margin),
	}, nil
}

// UpsertProductCost stores a product's cost basis and its full-price margin.
func (s *productService) UpsertProductCost(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when upserting product cost")
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if product.ShopID == 0 {
		logger.Error("Invalid product data: shop id is required")
		return nil, errors.New("shop id is required")
	}

	if product.ExternalProductID == "" {
		logger.Error("Invalid product data: external product id is required")
		return nil, errors.New("external product id is required")
	}

	if product.Price < 0 {
		logger.Error("Invalid product data: price cannot be negative")
		return nil, errors.New("price cannot be negative")
	}

	if product.Cogs < 0 || product.ShippingCost < 0 || product.AdditionalCosts < 0 {
		logger.Error("Invalid product data: costs cannot be negative")
		return nil, errors.New("costs cannot be negative")
	}

	if product.InventoryQuantity < 0 {
		logger.Error("Invalid product data: inventory cannot be negative")
		return nil, errors.New("inventory cannot be negative")
	}

	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}

	cfg, err := s.cfgLoader.Load(ctx, product.ShopID)
	if err != nil {
		logger.Error("failed to load shop config", "shop_id", product.ShopID, "error", err)
		return nil, err
	}

	margin := pricing.Rounded(pricing.CalculateProductMargin(product.Price, product.Cogs, product.ShippingCost, product.AdditionalCosts, cfg.Fee))
	product.CostKnown = true
	product.MarginAmount = margin.ContributionMargin
	product.MarginPct = margin.ContributionMarginPct

	if err := s.productRepo.Upsert(ctx, product); err != nil {
		logger.Error("failed to upsert product cost", "shop_id", product.ShopID, "error", err)
		return nil, fmt.Errorf("failed to upsert product cost: %w", err)
	}

	logger.Info("product cost saved", "shop_id", product.ShopID, "product_id", product.ID)

	return product, nil
}
