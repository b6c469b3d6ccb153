//go:build !integration

package experiment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bundleBoost/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTestRepo struct {
	mu    sync.Mutex
	tests map[string]domain.ABTest
}

func newMemTestRepo() *memTestRepo {
	return &memTestRepo{tests: map[string]domain.ABTest{}}
}

func (r *memTestRepo) Create(_ context.Context, test *domain.ABTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[test.ID] = *test
	return nil
}

func (r *memTestRepo) FindByID(_ context.Context, id string) (domain.ABTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return domain.ABTest{}, domain.ErrTestNotFound
	}
	return t, nil
}

func (r *memTestRepo) MarkRunning(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok || t.Status != domain.ABTestStatusDraft {
		return false, nil
	}
	t.Status = domain.ABTestStatusRunning
	t.StartedAt = &at
	r.tests[id] = t
	return true, nil
}

func (r *memTestRepo) Complete(_ context.Context, test domain.ABTest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[test.ID]
	if !ok || t.Status != domain.ABTestStatusRunning {
		return false, nil
	}
	r.tests[test.ID] = test
	return true, nil
}

type memCounters struct {
	mu sync.Mutex
	c  map[string]domain.ABTestCounters
}

func newMemCounters() *memCounters {
	return &memCounters{c: map[string]domain.ABTestCounters{}}
}

func (m *memCounters) Increment(_ context.Context, testID string, arm domain.Arm, metric domain.MetricKind, revenue float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.c[testID]
	switch {
	case arm == domain.ArmControl && metric == domain.MetricImpression:
		c.ControlImpressions++
	case arm == domain.ArmControl && metric == domain.MetricConversion:
		c.ControlConversions++
		c.ControlRevenue += revenue
	case arm == domain.ArmVariant && metric == domain.MetricImpression:
		c.VariantImpressions++
	case arm == domain.ArmVariant && metric == domain.MetricConversion:
		c.VariantConversions++
		c.VariantRevenue += revenue
	}
	m.c[testID] = c
	return nil
}

func (m *memCounters) Get(_ context.Context, testID string) (domain.ABTestCounters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c[testID], nil
}

func newTestExperimentService() (*ExperimentService, *memTestRepo, *memCounters) {
	repo := newMemTestRepo()
	counters := newMemCounters()
	return NewExperimentService(repo, counters, DefaultThresholds()), repo, counters
}

func createTest(t *testing.T, svc *ExperimentService) domain.ABTest {
	t.Helper()
	test, err := svc.Create(context.Background(), CreateInput{
		ShopID:             1,
		BundleID:           "6b0f5b8e-5d7c-4f7e-9a55-0c1f1e8e2a10",
		Name:               "10 vs 20 off",
		ControlDiscountPct: 10,
		VariantDiscountPct: 20,
	})
	require.NoError(t, err)
	return test
}

func record(t *testing.T, svc *ExperimentService, id string, arm domain.Arm, metric domain.MetricKind, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, svc.RecordMetric(context.Background(), id, arm, metric, 0))
	}
}

func TestCreate_Validates(t *testing.T) {
	svc, _, _ := newTestExperimentService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ShopID: 1})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateInput{ShopID: 1, Name: "x", VariantDiscountPct: 120})
	assert.Error(t, err)

	test := createTest(t, svc)
	assert.NotEmpty(t, test.ID)
	assert.Equal(t, domain.ABTestStatusDraft, test.Status)
}

func TestLifecycle_DraftRunningCompleted(t *testing.T) {
	svc, repo, _ := newTestExperimentService()
	ctx := context.Background()
	test := createTest(t, svc)

	_, err := svc.Stop(ctx, test.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cannot stop a draft")

	started, err := svc.Start(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ABTestStatusRunning, started.Status)
	assert.NotNil(t, started.StartedAt)

	_, err = svc.Start(ctx, test.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cannot start twice")

	record(t, svc, test.ID, domain.ArmControl, domain.MetricImpression, 1000)
	record(t, svc, test.ID, domain.ArmVariant, domain.MetricImpression, 1000)
	record(t, svc, test.ID, domain.ArmControl, domain.MetricConversion, 50)
	record(t, svc, test.ID, domain.ArmVariant, domain.MetricConversion, 80)

	stopped, err := svc.Stop(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ABTestStatusCompleted, stopped.Status)
	require.NotNil(t, stopped.WinnerArm)
	assert.Equal(t, domain.ArmVariant, *stopped.WinnerArm)
	assert.NotNil(t, stopped.EndedAt)

	stored := repo.tests[test.ID]
	assert.Equal(t, int64(80), stored.VariantConversions)
	assert.Equal(t, domain.ABTestStatusCompleted, stored.Status)

	_, err = svc.Start(ctx, test.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "no way back from completed")
	_, err = svc.Stop(ctx, test.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = svc.RecordMetric(ctx, test.ID, domain.ArmControl, domain.MetricImpression, 0)
	assert.ErrorIs(t, err, ErrTestNotRunning)
}

func TestAssign_RequiresRunning(t *testing.T) {
	svc, _, _ := newTestExperimentService()
	ctx := context.Background()
	test := createTest(t, svc)

	_, err := svc.Assign(ctx, test.ID, "sess-1")
	assert.ErrorIs(t, err, ErrTestNotRunning)

	_, err = svc.Start(ctx, test.ID)
	require.NoError(t, err)

	a, err := svc.Assign(ctx, test.ID, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, AssignVariant(test.ID, "sess-1"), a.Arm)
	assert.Equal(t, test.DiscountFor(a.Arm), a.DiscountPct)

	again, err := svc.Assign(ctx, test.ID, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, a, again)

	_, err = svc.Assign(ctx, test.ID, " ")
	assert.Error(t, err)

	_, err = svc.Assign(ctx, "missing", "sess-1")
	assert.ErrorIs(t, err, domain.ErrTestNotFound)
}

func TestRecordMetric_RevenueOnlyOnConversions(t *testing.T) {
	svc, _, counters := newTestExperimentService()
	ctx := context.Background()
	test := createTest(t, svc)

	err := svc.RecordMetric(ctx, test.ID, domain.ArmControl, domain.MetricImpression, 0)
	assert.ErrorIs(t, err, ErrTestNotRunning)

	_, err = svc.Start(ctx, test.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordMetric(ctx, test.ID, domain.ArmVariant, domain.MetricImpression, 99))
	require.NoError(t, svc.RecordMetric(ctx, test.ID, domain.ArmVariant, domain.MetricConversion, 42.5))

	c := counters.c[test.ID]
	assert.Equal(t, int64(1), c.VariantImpressions)
	assert.Equal(t, int64(1), c.VariantConversions)
	assert.Equal(t, 42.5, c.VariantRevenue)

	assert.ErrorIs(t, svc.RecordMetric(ctx, test.ID, "treatment", domain.MetricImpression, 0), ErrInvalidArm)
	assert.ErrorIs(t, svc.RecordMetric(ctx, test.ID, domain.ArmControl, "click", 0), ErrInvalidMetric)
}

func TestRecordMetric_ConcurrentIncrements(t *testing.T) {
	svc, _, counters := newTestExperimentService()
	ctx := context.Background()
	test := createTest(t, svc)
	_, err := svc.Start(ctx, test.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = svc.RecordMetric(ctx, test.ID, domain.ArmControl, domain.MetricImpression, 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), counters.c[test.ID].ControlImpressions)
}

func TestResults_LiveWhileRunning(t *testing.T) {
	svc, _, _ := newTestExperimentService()
	ctx := context.Background()
	test := createTest(t, svc)
	_, err := svc.Start(ctx, test.ID)
	require.NoError(t, err)

	record(t, svc, test.ID, domain.ArmControl, domain.MetricImpression, 20)
	record(t, svc, test.ID, domain.ArmControl, domain.MetricConversion, 5)

	res, err := svc.Results(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ABTestStatusRunning, res.Status)
	assert.Equal(t, int64(20), res.Control.Impressions)
	assert.InDelta(t, 0.25, res.Control.ConversionRate, 1e-12)
	assert.LessOrEqual(t, res.Control.Interval.Lower, 0.25)
	assert.GreaterOrEqual(t, res.Control.Interval.Upper, 0.25)
	assert.Nil(t, res.Verdict.Winner, "too few impressions")
	assert.Equal(t, Interval{}, res.Variant.Interval)
}

func ExampleCalculateWinner() {
	v := CalculateWinner(domain.ABTestCounters{
		ControlImpressions: 1000, ControlConversions: 50,
		VariantImpressions: 1000, VariantConversions: 80,
	}, DefaultThresholds())
	fmt.Printf("%s %.3f\n", *v.Winner, v.Confidence)
	// Output: variant 0.993
}
