package bundlegen

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"bundleBoost/business/pricing"
	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"
)

// Skip reasons reported per anchor.
const (
	SkipNoCompanions  = "no_companions"
	SkipNotViable     = "discount_not_viable"
	SkipComputeFailed = "compute_failed"
)

var (
	errNoCompanions = errors.New("no companion products available")
	errNotViable    = errors.New("no discount keeps margin above floor")
)

type SkippedAnchor struct {
	AnchorID uint64
	Reason   string
	Err      error
}

type Result struct {
	Candidates []domain.BundleCandidate
	Skipped    []SkippedAnchor
}

type Generator struct {
	opts Options
}

func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate proposes up to MaxCandidates bundles for one shop: each bestseller
// anchor is paired with the stalest dead-stock companions, priced at the
// deepest discount the shop's margin floor allows, and ranked by score.
func (g *Generator) Generate(products []domain.Product, shop shopconfig.Config) Result {
	if !shop.AutoGenerateBundles {
		return Result{}
	}

	eligible := costBearing(products)
	if len(eligible) < 2 {
		return Result{}
	}

	anchors := g.bestsellers(eligible)

	pool := companionPool(eligible, shop.IncludeDeadStock)
	if len(pool) == 0 {
		return Result{}
	}

	perBundle := max(shop.MaxProductsPerBundle-1, 1)
	used := make(map[uint64]int, len(pool))

	var res Result
	for _, anchor := range anchors {
		companions := pickCompanions(pool, anchor.ID, perBundle, used)

		cand, err := g.safeBuild(anchor, companions, shop)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedAnchor{
				AnchorID: anchor.ID,
				Reason:   skipReason(err),
				Err:      err,
			})
			continue
		}

		for _, c := range companions {
			used[c.ID]++
		}
		res.Candidates = append(res.Candidates, cand)
	}

	sort.SliceStable(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Score > res.Candidates[j].Score
	})

	limit := g.opts.MaxCandidates
	if limit <= 0 || limit > defaultMaxCandidates {
		limit = defaultMaxCandidates
	}
	if len(res.Candidates) > limit {
		res.Candidates = res.Candidates[:limit]
	}

	return res
}

// safeBuild isolates one anchor so a fault in its computation never aborts
// the whole run.
func (g *Generator) safeBuild(anchor domain.Product, companions []domain.Product, shop shopconfig.Config) (cand domain.BundleCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("anchor %d: %v", anchor.ID, r)
		}
	}()
	return g.buildCandidate(anchor, companions, shop)
}

func (g *Generator) buildCandidate(anchor domain.Product, companions []domain.Product, shop shopconfig.Config) (domain.BundleCandidate, error) {
	if len(companions) == 0 {
		return domain.BundleCandidate{}, errNoCompanions
	}

	items := make([]domain.CandidateItem, 0, len(companions)+1)
	items = append(items, candidateItem(anchor, true))
	for _, c := range companions {
		items = append(items, candidateItem(c, false))
	}

	costItems := make([]domain.CostItem, len(items))
	for i, it := range items {
		costItems[i] = it.CostItem()
	}

	discount := g.opts.Searcher.FindOptimalDiscount(costItems, shop.Fee, shop.MinMarginPct)
	if discount <= 0 {
		return domain.BundleCandidate{}, errNotViable
	}

	margin := pricing.CalculateBundleMargin(costItems, discount, shop.Fee)
	if math.IsNaN(margin.ContributionMarginPct) || math.IsInf(margin.ContributionMarginPct, 0) {
		return domain.BundleCandidate{}, fmt.Errorf("anchor %d: non-finite margin", anchor.ID)
	}

	staleDays := make([]int, len(companions))
	companionIDs := make([]uint64, len(companions))
	for i, c := range companions {
		staleDays[i] = c.DaysWithoutSale
		companionIDs[i] = c.ID
	}

	score := g.opts.Score(ScoreInput{
		AnchorAvgDailySales:      anchor.AvgDailySales,
		CompanionDaysWithoutSale: staleDays,
		EstimatedMarginPct:       margin.ContributionMarginPct,
	})

	return domain.BundleCandidate{
		AnchorID:     anchor.ID,
		CompanionIDs: companionIDs,
		Name:         bundleName(anchor, companions),
		DiscountPct:  discount,
		Score:        score,
		Margin:       margin,
		Items:        items,
	}, nil
}

// bestsellers returns the top BestsellerShare of products by sales velocity,
// at least one.
func (g *Generator) bestsellers(products []domain.Product) []domain.Product {
	ranked := make([]domain.Product, len(products))
	copy(ranked, products)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AvgDailySales == ranked[j].AvgDailySales {
			return ranked[i].ID < ranked[j].ID
		}
		return ranked[i].AvgDailySales > ranked[j].AvgDailySales
	})

	share := g.opts.BestsellerShare
	if share <= 0 || share > 1 {
		share = defaultBestsellerShare
	}
	n := max(int(float64(len(ranked))*share), 1)

	return ranked[:n]
}

func costBearing(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Status != domain.ProductStatusActive || !p.CostKnown || p.Price <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// companionPool is the clearance pool: dead stock with inventory, stalest
// first. Without dead stock there is no other companion strategy.
func companionPool(products []domain.Product, includeDeadStock bool) []domain.Product {
	if !includeDeadStock {
		return nil
	}

	pool := make([]domain.Product, 0)
	for _, p := range products {
		if p.IsDeadStock && p.InventoryQuantity > 0 {
			pool = append(pool, p)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].DaysWithoutSale == pool[j].DaysWithoutSale {
			return pool[i].ID < pool[j].ID
		}
		return pool[i].DaysWithoutSale > pool[j].DaysWithoutSale
	})

	return pool
}

// pickCompanions takes up to n products from the pool, never the anchor,
// preferring those placed in the fewest bundles so far and then the stalest.
func pickCompanions(pool []domain.Product, anchorID uint64, n int, used map[uint64]int) []domain.Product {
	ranked := make([]domain.Product, 0, len(pool))
	for _, p := range pool {
		if p.ID != anchorID {
			ranked = append(ranked, p)
		}
	}

	// pool is already stalest-first, stable sort keeps that order per usage tier
	sort.SliceStable(ranked, func(i, j int) bool {
		return used[ranked[i].ID] < used[ranked[j].ID]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func candidateItem(p domain.Product, isAnchor bool) domain.CandidateItem {
	return domain.CandidateItem{
		ProductID:       p.ID,
		Title:           p.Title,
		Price:           p.Price,
		Cogs:            p.Cogs,
		ShippingCost:    p.ShippingCost,
		AdditionalCosts: p.AdditionalCosts,
		Quantity:        1,
		IsAnchor:        isAnchor,
		IsDeadStock:     p.IsDeadStock,
	}
}

func bundleName(anchor domain.Product, companions []domain.Product) string {
	title := anchor.Title
	if title == "" {
		title = fmt.Sprintf("Product %d", anchor.ID)
	}

	for _, c := range companions {
		if c.IsDeadStock {
			return fmt.Sprintf("%s Clearance Bundle", title)
		}
	}
	return fmt.Sprintf("%s Bundle", title)
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, errNoCompanions):
		return SkipNoCompanions
	case errors.Is(err, errNotViable):
		return SkipNotViable
	default:
		return SkipComputeFailed
	}
}
