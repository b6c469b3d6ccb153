//go:build !integration

package optimization

import (
	"context"
	"errors"
	"testing"
	"time"

	"bundleBoost/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counts struct{ views, purchases int64 }

// fakeCounter answers by range start.
type fakeCounter struct {
	byFrom map[time.Time]counts
	err    error
	calls  int
}

func (f *fakeCounter) CountEvents(_ context.Context, _ string, from, _ time.Time) (int64, int64, error) {
	f.calls++
	if f.err != nil {
		return 0, 0, f.err
	}
	c := f.byFrom[from]
	return c.views, c.purchases, nil
}

var (
	t0  = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	t1  = t0.Add(10 * 24 * time.Hour)
	t2  = t1.Add(10 * 24 * time.Hour)
	now = t2.Add(10 * 24 * time.Hour)
)

func recordedChanges() []domain.BundleDiscountChange {
	// stored newest first
	return []domain.BundleDiscountChange{
		{BundleID: "b1", PreviousDiscountPct: 10, NewDiscountPct: 20, AppliedAt: t2},
		{BundleID: "b1", PreviousDiscountPct: 0, NewDiscountPct: 10, AppliedAt: t1},
	}
}

func TestDiscountRanges(t *testing.T) {
	ranges := DiscountRanges(t0, 20, recordedChanges(), now)
	require.Len(t, ranges, 3)

	assert.Equal(t, DiscountRange{DiscountPct: 0, From: t0, To: t1}, ranges[0])
	assert.Equal(t, DiscountRange{DiscountPct: 10, From: t1, To: t2}, ranges[1])
	assert.Equal(t, DiscountRange{DiscountPct: 20, From: t2, To: now}, ranges[2])
}

func TestDiscountRanges_NoChanges(t *testing.T) {
	ranges := DiscountRanges(t0, 15, nil, now)
	require.Len(t, ranges, 1)
	assert.Equal(t, DiscountRange{DiscountPct: 15, From: t0, To: now}, ranges[0])
}

func TestDiscountRanges_ChangeAtCreationIsEmptyRange(t *testing.T) {
	changes := []domain.BundleDiscountChange{{PreviousDiscountPct: 5, NewDiscountPct: 12, AppliedAt: t0}}
	ranges := DiscountRanges(t0, 12, changes, now)
	require.Len(t, ranges, 1)
	assert.Equal(t, 12.0, ranges[0].DiscountPct)
}

func TestHistoryBuilder_DropsSparseRanges(t *testing.T) {
	counter := &fakeCounter{byFrom: map[time.Time]counts{
		t0: {views: 100, purchases: 2},
		t1: {views: 10, purchases: 5}, // exactly ten views is not enough
		t2: {views: 50, purchases: 4},
	}}

	points, err := NewHistoryBuilder(counter, 10).Build(
		context.Background(),
		domain.Bundle{ID: "b1", DiscountPct: 20, CreatedAt: t0},
		recordedChanges(),
		now,
	)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 3, counter.calls)

	assert.Equal(t, 0.0, points[0].DiscountPct)
	assert.InDelta(t, 0.02, points[0].ConversionRate, 1e-12)
	assert.Equal(t, 20.0, points[1].DiscountPct)
	assert.InDelta(t, 0.08, points[1].ConversionRate, 1e-12)
}

func TestHistoryBuilder_CounterError(t *testing.T) {
	counter := &fakeCounter{err: errors.New("timeout")}
	_, err := NewHistoryBuilder(counter, 10).Build(context.Background(), domain.Bundle{ID: "b1", CreatedAt: t0}, nil, now)
	assert.ErrorContains(t, err, "timeout")
}

func TestHistoryBuilder_ViewFloorCannotBeLowered(t *testing.T) {
	counter := &fakeCounter{byFrom: map[time.Time]counts{
		t0: {views: 100, purchases: 2},
		t1: {views: 8, purchases: 1},
		t2: {views: 50, purchases: 4},
	}}

	points, err := NewHistoryBuilder(counter, 2).Build(
		context.Background(),
		domain.Bundle{ID: "b1", DiscountPct: 20, CreatedAt: t0},
		recordedChanges(),
		now,
	)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}
