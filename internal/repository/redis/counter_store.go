package redis

import (
	"context"
	"fmt"
	"strconv"

	"bundleBoost/business/experiment"
	"bundleBoost/domain"

	"github.com/redis/go-redis/v9"
)

const (
	fieldImpressions = "impressions"
	fieldConversions = "conversions"
	fieldRevenue     = "revenue"
)

// CounterStore keeps one hash per test, key "abtest:{id}:counters", with
// fields "{arm}:{impressions|conversions|revenue}". HINCRBY and
// HINCRBYFLOAT make every increment atomic on the server.
type CounterStore struct {
	client redis.Cmdable
}

var _ experiment.CounterStore = (*CounterStore)(nil)

func NewCounterStore(client redis.Cmdable) *CounterStore {
	return &CounterStore{
		client: client,
	}
}

func countersKey(testID string) string {
	return fmt.Sprintf("abtest:%s:counters", testID)
}

func armField(arm domain.Arm, field string) string {
	return string(arm) + ":" + field
}

func (s *CounterStore) Increment(ctx context.Context, testID string, arm domain.Arm, metric domain.MetricKind, revenue float64) error {
	key := countersKey(testID)

	switch metric {
	case domain.MetricImpression:
		if err := s.client.HIncrBy(ctx, key, armField(arm, fieldImpressions), 1).Err(); err != nil {
			return fmt.Errorf("failed to increment impressions: %w", err)
		}
	case domain.MetricConversion:
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HIncrBy(ctx, key, armField(arm, fieldConversions), 1)
			if revenue > 0 {
				pipe.HIncrByFloat(ctx, key, armField(arm, fieldRevenue), revenue)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to increment conversions: %w", err)
		}
	default:
		return fmt.Errorf("unknown metric %q", metric)
	}

	return nil
}

func (s *CounterStore) Get(ctx context.Context, testID string) (domain.ABTestCounters, error) {
	vals, err := s.client.HGetAll(ctx, countersKey(testID)).Result()
	if err != nil {
		return domain.ABTestCounters{}, fmt.Errorf("failed to read counters from Redis: %w", err)
	}

	var c domain.ABTestCounters
	if c.ControlImpressions, err = parseCount(vals, armField(domain.ArmControl, fieldImpressions)); err != nil {
		return domain.ABTestCounters{}, err
	}
	if c.ControlConversions, err = parseCount(vals, armField(domain.ArmControl, fieldConversions)); err != nil {
		return domain.ABTestCounters{}, err
	}
	if c.ControlRevenue, err = parseAmount(vals, armField(domain.ArmControl, fieldRevenue)); err != nil {
		return domain.ABTestCounters{}, err
	}
	if c.VariantImpressions, err = parseCount(vals, armField(domain.ArmVariant, fieldImpressions)); err != nil {
		return domain.ABTestCounters{}, err
	}
	if c.VariantConversions, err = parseCount(vals, armField(domain.ArmVariant, fieldConversions)); err != nil {
		return domain.ABTestCounters{}, err
	}
	if c.VariantRevenue, err = parseAmount(vals, armField(domain.ArmVariant, fieldRevenue)); err != nil {
		return domain.ABTestCounters{}, err
	}

	return c, nil
}

func parseCount(vals map[string]string, field string) (int64, error) {
	raw, ok := vals[field]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid counter %s=%q: %w", field, raw, err)
	}
	return n, nil
}

func parseAmount(vals map[string]string, field string) (float64, error) {
	raw, ok := vals[field]
	if !ok {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid counter %s=%q: %w", field, raw, err)
	}
	return f, nil
}
