package bundlegen

import (
	"context"
	"fmt"
	"time"

	"bundleBoost/business/pricing"
	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"
	"bundleBoost/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type ProductRepository interface {
	FindActiveWithCost(ctx context.Context, shopID uint64) ([]domain.Product, error)
}

type BundleRepository interface {
	// ReplaceAutoBundles archives every AUTO bundle of the shop and inserts
	// the given bundles in one transaction.
	ReplaceAutoBundles(ctx context.Context, shopID uint64, bundles []domain.Bundle) error
}

type ShopConfigLoader interface {
	Load(ctx context.Context, shopID uint64) (shopconfig.Config, error)
}

// ---- Service ----

type GenerationService struct {
	productRepo ProductRepository
	bundleRepo  BundleRepository
	cfgLoader   ShopConfigLoader
	generator   *Generator
	now         func() time.Time
}

func NewGenerationService(
	productRepo ProductRepository,
	bundleRepo BundleRepository,
	cfgLoader ShopConfigLoader,
	opts Options,
) *GenerationService {
	return &GenerationService{
		productRepo: productRepo,
		bundleRepo:  bundleRepo,
		cfgLoader:   cfgLoader,
		generator:   NewGenerator(opts),
		now:         time.Now,
	}
}

// GenerateForShop runs one generation pass and returns the persisted DRAFT
// bundles. When generation is disabled or nothing qualifies, the shop's
// existing bundles are left untouched.
func (s *GenerationService) GenerateForShop(ctx context.Context, shopID uint64) ([]domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	cfg, err := s.cfgLoader.Load(ctx, shopID)
	if err != nil {
		GenerationRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if !cfg.AutoGenerateBundles {
		logger.Debug("bundle generation disabled", "shop_id", shopID)
		GenerationRunsTotal.WithLabelValues("disabled").Inc()
		return []domain.Bundle{}, nil
	}

	products, err := s.productRepo.FindActiveWithCost(ctx, shopID)
	if err != nil {
		GenerationRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load products: %w", err)
	}

	res := s.generator.Generate(products, cfg)

	for _, sk := range res.Skipped {
		SkippedAnchorsTotal.WithLabelValues(sk.Reason).Inc()
		logger.Debug("anchor skipped",
			"shop_id", shopID,
			"anchor_id", sk.AnchorID,
			"reason", sk.Reason,
			"error", sk.Err,
		)
	}

	if len(res.Candidates) == 0 {
		logger.Info("bundle generation produced no candidates",
			"shop_id", shopID,
			"products", len(products),
			"skipped", len(res.Skipped),
		)
		GenerationRunsTotal.WithLabelValues("empty").Inc()
		return []domain.Bundle{}, nil
	}

	now := s.now()
	bundles := make([]domain.Bundle, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		bundles = append(bundles, toDraftBundle(shopID, c, now))
	}

	if err := s.bundleRepo.ReplaceAutoBundles(ctx, shopID, bundles); err != nil {
		GenerationRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("persist bundles: %w", err)
	}

	GenerationRunsTotal.WithLabelValues("ok").Inc()
	GeneratedCandidatesTotal.Add(float64(len(bundles)))

	logger.Info("bundle generation finished",
		"shop_id", shopID,
		"bundles", len(bundles),
		"skipped", len(res.Skipped),
	)

	return bundles, nil
}

func toDraftBundle(shopID uint64, c domain.BundleCandidate, now time.Time) domain.Bundle {
	id := uuid.NewString()
	margin := pricing.Rounded(c.Margin)

	items := make([]domain.BundleItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, domain.BundleItem{
			BundleID:     id,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			IsAnchor:     it.IsAnchor,
			IsDeadStock:  it.IsDeadStock,
			CostSnapshot: datatypes.NewJSONType(it.CostItem()),
		})
	}

	return domain.Bundle{
		ID:                    id,
		ShopID:                shopID,
		Name:                  c.Name,
		Status:                domain.BundleStatusDraft,
		Source:                domain.BundleSourceAuto,
		DiscountPct:           c.DiscountPct,
		EffectivePrice:        margin.EffectivePrice,
		ContributionMargin:    margin.ContributionMargin,
		ContributionMarginPct: margin.ContributionMarginPct,
		Score:                 c.Score,
		Items:                 items,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
