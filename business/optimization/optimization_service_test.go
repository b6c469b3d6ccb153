//go:build !integration

package optimization

import (
	"context"
	"errors"
	"testing"
	"time"

	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeBundleRepo struct {
	bundles []domain.Bundle
	applied []domain.BundleDiscountChange
	saved   []domain.Bundle
	err     error
}

func (f *fakeBundleRepo) FindActiveByShop(_ context.Context, _ uint64) ([]domain.Bundle, error) {
	return f.bundles, nil
}

func (f *fakeBundleRepo) ApplyDiscount(_ context.Context, b domain.Bundle, c domain.BundleDiscountChange) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, b)
	f.applied = append(f.applied, c)
	return nil
}

type fakeChangeRepo struct {
	byBundle map[string][]domain.BundleDiscountChange
	failFor  string
}

func (f *fakeChangeRepo) ListByBundle(_ context.Context, bundleID string) ([]domain.BundleDiscountChange, error) {
	if bundleID == f.failFor {
		return nil, errors.New("changes unavailable")
	}
	return f.byBundle[bundleID], nil
}

type fakeProductRepo struct {
	products []domain.Product
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, _ uint64, ids []uint64) ([]domain.Product, error) {
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Product
	for _, p := range f.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type staticLoader struct {
	cfg shopconfig.Config
}

func (l staticLoader) Load(_ context.Context, _ uint64) (shopconfig.Config, error) {
	return l.cfg, nil
}

func optimizingShop() shopconfig.Config {
	cfg := shopconfig.DefaultConfig(1)
	cfg.AutoOptimizeDiscounts = true
	return cfg
}

func activeBundle(id string) domain.Bundle {
	return domain.Bundle{
		ID:          id,
		ShopID:      1,
		Status:      domain.BundleStatusActive,
		DiscountPct: 20,
		CreatedAt:   t0,
		Items: []domain.BundleItem{{
			BundleID:  id,
			ProductID: 7,
			Quantity:  1,
			CostSnapshot: datatypes.NewJSONType(domain.CostItem{
				Price: 100, Cogs: 30, Quantity: 1,
			}),
		}},
	}
}

// conversion rises 0.2 points per discount point: revenue peaks at 45%
func risingCounter() *fakeCounter {
	return &fakeCounter{byFrom: map[time.Time]counts{
		t0: {views: 100, purchases: 2},
		t1: {views: 100, purchases: 4},
		t2: {views: 100, purchases: 6},
	}}
}

func newTestService(bundles *fakeBundleRepo, changes *fakeChangeRepo, counter EventCounter, cfg shopconfig.Config) *OptimizationService {
	products := &fakeProductRepo{products: []domain.Product{{ID: 7, ShopID: 1, Price: 100, Cogs: 30, CostKnown: true}}}
	return NewOptimizationService(bundles, changes, products, counter, staticLoader{cfg: cfg}, DefaultOptions())
}

func TestOptimizeShop_Disabled(t *testing.T) {
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{activeBundle("b1")}}
	svc := newTestService(bundles, &fakeChangeRepo{}, risingCounter(), shopconfig.DefaultConfig(1))

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, bundles.applied)
}

func TestOptimizeShop_AppliesRevenueMaximizingDiscount(t *testing.T) {
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{activeBundle("b1")}}
	changes := &fakeChangeRepo{byBundle: map[string][]domain.BundleDiscountChange{"b1": recordedChanges()}}
	svc := newTestService(bundles, changes, risingCounter(), optimizingShop())

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, out, 1)

	o := out[0]
	assert.True(t, o.Applied)
	assert.Equal(t, ReasonApplied, o.Reason)
	assert.Equal(t, 20.0, o.PreviousDiscountPct)
	assert.Equal(t, 45.0, o.RecommendedDiscountPct)
	assert.Equal(t, 3, o.HistoryPoints)

	require.Len(t, bundles.applied, 1)
	c := bundles.applied[0]
	assert.Equal(t, "b1", c.BundleID)
	assert.Equal(t, 20.0, c.PreviousDiscountPct)
	assert.Equal(t, 45.0, c.NewDiscountPct)
	assert.Equal(t, domain.DiscountChangeRevenueOptimization, c.Reason)
	assert.Equal(t, now, c.AppliedAt)

	require.Len(t, bundles.saved, 1)
	assert.Equal(t, 45.0, bundles.saved[0].DiscountPct)
	assert.Equal(t, 55.0, bundles.saved[0].EffectivePrice)
}

func TestOptimizeShop_InsufficientHistory(t *testing.T) {
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{activeBundle("b1")}}
	svc := newTestService(bundles, &fakeChangeRepo{}, risingCounter(), optimizingShop())

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, ReasonInsufficientHistory, out[0].Reason)
	assert.Equal(t, 1, out[0].HistoryPoints)
	assert.Empty(t, bundles.applied)
}

func TestOptimizeShop_RevisitedDiscountIsNotANewLevel(t *testing.T) {
	b := activeBundle("b1")
	b.DiscountPct = 10
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{b}}
	changes := &fakeChangeRepo{byBundle: map[string][]domain.BundleDiscountChange{"b1": {
		{BundleID: "b1", PreviousDiscountPct: 20, NewDiscountPct: 10, AppliedAt: t2},
		{BundleID: "b1", PreviousDiscountPct: 10, NewDiscountPct: 20, AppliedAt: t1},
	}}}
	svc := newTestService(bundles, changes, risingCounter(), optimizingShop())

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, ReasonInsufficientHistory, out[0].Reason)
	assert.Equal(t, 3, out[0].HistoryPoints)
	assert.Empty(t, bundles.applied)
}

func TestOptimizeShop_UnchangedDiscountNotRecorded(t *testing.T) {
	b := activeBundle("b1")
	b.DiscountPct = 45
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{b}}
	changes := &fakeChangeRepo{byBundle: map[string][]domain.BundleDiscountChange{"b1": {
		{PreviousDiscountPct: 0, NewDiscountPct: 10, AppliedAt: t1},
		{PreviousDiscountPct: 10, NewDiscountPct: 45, AppliedAt: t2},
	}}}
	counter := &fakeCounter{byFrom: map[time.Time]counts{
		t0: {views: 100, purchases: 2},
		t1: {views: 100, purchases: 4},
		t2: {views: 100, purchases: 11},
	}}
	svc := newTestService(bundles, changes, counter, optimizingShop())

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, ReasonUnchanged, out[0].Reason)
	assert.False(t, out[0].Applied)
	assert.Empty(t, bundles.applied)
}

func TestOptimizeShop_OneFailureDoesNotStopOthers(t *testing.T) {
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{activeBundle("bad"), activeBundle("b1")}}
	changes := &fakeChangeRepo{
		byBundle: map[string][]domain.BundleDiscountChange{"b1": recordedChanges()},
		failFor:  "bad",
	}
	svc := newTestService(bundles, changes, risingCounter(), optimizingShop())

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, ReasonFailed, out[0].Reason)
	assert.Contains(t, out[0].Error, "changes unavailable")
	assert.Equal(t, ReasonApplied, out[1].Reason)
}

func TestOptimizeShop_SnapshotUsedWhenProductMissing(t *testing.T) {
	bundles := &fakeBundleRepo{bundles: []domain.Bundle{activeBundle("b1")}}
	changes := &fakeChangeRepo{byBundle: map[string][]domain.BundleDiscountChange{"b1": recordedChanges()}}
	svc := NewOptimizationService(bundles, changes, &fakeProductRepo{}, risingCounter(), staticLoader{cfg: optimizingShop()}, DefaultOptions())

	out, err := svc.OptimizeShop(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 45.0, out[0].RecommendedDiscountPct)
}
