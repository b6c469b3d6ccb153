package optimization

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bundleBoost/domain"
)

const defaultMinViewsPerRange = 10

// EventCounter counts a bundle's views and purchases in [from, to).
type EventCounter interface {
	CountEvents(ctx context.Context, bundleID string, from, to time.Time) (views, purchases int64, err error)
}

// DiscountRange is one contiguous stretch of a bundle's life during which a
// single discount was live.
type DiscountRange struct {
	DiscountPct float64
	From        time.Time
	To          time.Time
}

// DiscountRanges partitions [createdAt, now) by the recorded discount
// changes. Every change stores the discount that was live before it, so each
// range takes the previous value of the change that closes it and the last
// range takes the bundle's current discount.
func DiscountRanges(createdAt time.Time, currentDiscountPct float64, changes []domain.BundleDiscountChange, now time.Time) []DiscountRange {
	sorted := make([]domain.BundleDiscountChange, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AppliedAt.Before(sorted[j].AppliedAt)
	})

	ranges := make([]DiscountRange, 0, len(sorted)+1)
	from := createdAt
	for _, c := range sorted {
		if !c.AppliedAt.After(from) {
			from = maxTime(from, c.AppliedAt)
			continue
		}
		ranges = append(ranges, DiscountRange{
			DiscountPct: c.PreviousDiscountPct,
			From:        from,
			To:          c.AppliedAt,
		})
		from = c.AppliedAt
	}

	if now.After(from) {
		ranges = append(ranges, DiscountRange{
			DiscountPct: currentDiscountPct,
			From:        from,
			To:          now,
		})
	}

	return ranges
}

type HistoryBuilder struct {
	counter  EventCounter
	minViews int64
}

func NewHistoryBuilder(counter EventCounter, minViewsPerRange int) *HistoryBuilder {
	if minViewsPerRange < defaultMinViewsPerRange {
		minViewsPerRange = defaultMinViewsPerRange
	}
	return &HistoryBuilder{counter: counter, minViews: int64(minViewsPerRange)}
}

// Build reconstructs the bundle's conversion points. Ranges with too few
// views to be meaningful are dropped.
func (h *HistoryBuilder) Build(ctx context.Context, bundle domain.Bundle, changes []domain.BundleDiscountChange, now time.Time) ([]domain.ConversionPoint, error) {
	ranges := DiscountRanges(bundle.CreatedAt, bundle.DiscountPct, changes, now)

	points := make([]domain.ConversionPoint, 0, len(ranges))
	for _, r := range ranges {
		views, purchases, err := h.counter.CountEvents(ctx, bundle.ID, r.From, r.To)
		if err != nil {
			return nil, fmt.Errorf("count events for bundle %s: %w", bundle.ID, err)
		}
		if views <= h.minViews {
			continue
		}

		points = append(points, domain.ConversionPoint{
			DiscountPct:    r.DiscountPct,
			ConversionRate: float64(purchases) / float64(views),
			Views:          views,
			Purchases:      purchases,
		})
	}

	return points, nil
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
