package optimization

import (
	"context"
	"fmt"
	"time"

	"bundleBoost/business/pricing"
	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"
	"bundleBoost/pkg/config"
	"bundleBoost/pkg/logger"
)

// Outcome reasons.
const (
	ReasonApplied             = "applied"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonNoRecommendation    = "no_recommendation"
	ReasonUnchanged           = "unchanged"
	ReasonFailed              = "failed"
)

// ---- Repository interfaces ----

type BundleRepository interface {
	FindActiveByShop(ctx context.Context, shopID uint64) ([]domain.Bundle, error)
	// ApplyDiscount stores the bundle's new discount and margin together
	// with the change record.
	ApplyDiscount(ctx context.Context, bundle domain.Bundle, change domain.BundleDiscountChange) error
}

type DiscountChangeRepository interface {
	ListByBundle(ctx context.Context, bundleID string) ([]domain.BundleDiscountChange, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, shopID uint64, ids []uint64) ([]domain.Product, error)
}

type ShopConfigLoader interface {
	Load(ctx context.Context, shopID uint64) (shopconfig.Config, error)
}

type Options struct {
	MinHistoryPoints int
	MinViewsPerRange int
	Searcher         pricing.Searcher
}

func DefaultOptions() Options {
	return Options{
		MinHistoryPoints: pricing.MinElasticityPoints,
		MinViewsPerRange: defaultMinViewsPerRange,
		Searcher:         pricing.DefaultSearcher(),
	}
}

func OptionsFromEngine(ec config.EngineConfig) Options {
	return Options{
		MinHistoryPoints: max(ec.MinHistoryPoints, pricing.MinElasticityPoints),
		MinViewsPerRange: ec.MinViewsPerRange,
		Searcher:         pricing.NewSearcher(ec.MaxDiscountPct),
	}
}

// Outcome is the result of optimizing one bundle.
type Outcome struct {
	BundleID               string  `json:"bundle_id"`
	PreviousDiscountPct    float64 `json:"previous_discount_pct"`
	RecommendedDiscountPct float64 `json:"recommended_discount_pct"`
	ExpectedMarginPct      float64 `json:"expected_margin_pct"`
	HistoryPoints          int     `json:"history_points"`
	Applied                bool    `json:"applied"`
	Reason                 string  `json:"reason"`
	Error                  string  `json:"error,omitempty"`
}

// ---- Service ----

type OptimizationService struct {
	bundleRepo  BundleRepository
	changeRepo  DiscountChangeRepository
	productRepo ProductRepository
	cfgLoader   ShopConfigLoader
	history     *HistoryBuilder
	opts        Options
}

func NewOptimizationService(
	bundleRepo BundleRepository,
	changeRepo DiscountChangeRepository,
	productRepo ProductRepository,
	counter EventCounter,
	cfgLoader ShopConfigLoader,
	opts Options,
) *OptimizationService {
	return &OptimizationService{
		bundleRepo:  bundleRepo,
		changeRepo:  changeRepo,
		productRepo: productRepo,
		cfgLoader:   cfgLoader,
		history:     NewHistoryBuilder(counter, opts.MinViewsPerRange),
		opts:        opts,
	}
}

// OptimizeShop revisits every ACTIVE bundle of the shop and moves its
// discount to the revenue-maximizing value the history supports. A failure
// on one bundle is recorded in its outcome and does not stop the others.
func (s *OptimizationService) OptimizeShop(ctx context.Context, shopID uint64, now time.Time) ([]Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	cfg, err := s.cfgLoader.Load(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !cfg.AutoOptimizeDiscounts {
		logger.Debug("discount optimization disabled", "shop_id", shopID)
		OptimizationRunsTotal.WithLabelValues("disabled").Inc()
		return []Outcome{}, nil
	}

	bundles, err := s.bundleRepo.FindActiveByShop(ctx, shopID)
	if err != nil {
		OptimizationRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load bundles: %w", err)
	}

	outcomes := make([]Outcome, 0, len(bundles))
	for _, b := range bundles {
		if err := ctx.Err(); err != nil {
			return outcomes, fmt.Errorf("context error: %w", err)
		}

		out, err := s.optimizeBundle(ctx, b, cfg, now)
		if err != nil {
			logger.Warn("bundle optimization failed",
				"shop_id", shopID,
				"bundle_id", b.ID,
				"error", err,
			)
			out = Outcome{
				BundleID:            b.ID,
				PreviousDiscountPct: b.DiscountPct,
				Reason:              ReasonFailed,
				Error:               err.Error(),
			}
		}

		OptimizationOutcomesTotal.WithLabelValues(out.Reason).Inc()
		outcomes = append(outcomes, out)
	}

	OptimizationRunsTotal.WithLabelValues("ok").Inc()
	logger.Info("discount optimization finished",
		"shop_id", shopID,
		"bundles", len(bundles),
	)

	return outcomes, nil
}

func (s *OptimizationService) optimizeBundle(ctx context.Context, b domain.Bundle, cfg shopconfig.Config, now time.Time) (Outcome, error) {
	out := Outcome{
		BundleID:            b.ID,
		PreviousDiscountPct: b.DiscountPct,
	}

	changes, err := s.changeRepo.ListByBundle(ctx, b.ID)
	if err != nil {
		return out, fmt.Errorf("list discount changes: %w", err)
	}

	points, err := s.history.Build(ctx, b, changes, now)
	if err != nil {
		return out, err
	}
	out.HistoryPoints = len(points)

	if distinctDiscounts(points) < s.opts.MinHistoryPoints {
		out.Reason = ReasonInsufficientHistory
		return out, nil
	}

	items, err := s.currentCostItems(ctx, b)
	if err != nil {
		return out, err
	}

	rec, ok := s.opts.Searcher.FindRevenueMaximizingDiscount(
		points,
		pricing.IndividualTotal(items),
		pricing.TotalCost(items),
		cfg.MinMarginPct,
	)
	if !ok {
		out.Reason = ReasonNoRecommendation
		return out, nil
	}

	out.RecommendedDiscountPct = rec.DiscountPct
	out.ExpectedMarginPct = pricing.RoundMoney(rec.ExpectedMarginPct)

	if rec.DiscountPct == b.DiscountPct {
		out.Reason = ReasonUnchanged
		return out, nil
	}

	margin := pricing.Rounded(pricing.CalculateBundleMargin(items, rec.DiscountPct, cfg.Fee))

	updated := b
	updated.DiscountPct = rec.DiscountPct
	updated.EffectivePrice = margin.EffectivePrice
	updated.ContributionMargin = margin.ContributionMargin
	updated.ContributionMarginPct = margin.ContributionMarginPct
	updated.UpdatedAt = now

	change := domain.BundleDiscountChange{
		BundleID:            b.ID,
		PreviousDiscountPct: b.DiscountPct,
		NewDiscountPct:      rec.DiscountPct,
		Reason:              domain.DiscountChangeRevenueOptimization,
		AppliedAt:           now,
	}

	if err := s.bundleRepo.ApplyDiscount(ctx, updated, change); err != nil {
		return out, fmt.Errorf("apply discount: %w", err)
	}

	logger.Info("bundle discount optimized",
		"shop_id", b.ShopID,
		"bundle_id", b.ID,
		"previous", b.DiscountPct,
		"new", rec.DiscountPct,
		"expected_margin_pct", out.ExpectedMarginPct,
		"history_points", len(points),
	)

	out.Applied = true
	out.Reason = ReasonApplied
	return out, nil
}

// currentCostItems prices the bundle on today's product costs, falling back
// to the snapshot taken when the bundle was created for products that no
// longer carry a cost basis.
func (s *OptimizationService) currentCostItems(ctx context.Context, b domain.Bundle) ([]domain.CostItem, error) {
	ids := make([]uint64, 0, len(b.Items))
	for _, it := range b.Items {
		ids = append(ids, it.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, b.ShopID, ids)
	if err != nil {
		return nil, fmt.Errorf("load bundle products: %w", err)
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.CostItem, 0, len(b.Items))
	for _, it := range b.Items {
		if p, ok := byID[it.ProductID]; ok && p.CostKnown {
			items = append(items, p.CostItem(it.Quantity))
			continue
		}
		snap := it.CostSnapshot.Data()
		snap.Quantity = it.Quantity
		items = append(items, snap)
	}

	return items, nil
}

// distinctDiscounts counts the discount levels the history was observed at.
// Returning to an earlier discount adds a point but not a level.
func distinctDiscounts(points []domain.ConversionPoint) int {
	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		seen[p.DiscountPct] = struct{}{}
	}
	return len(seen)
}
