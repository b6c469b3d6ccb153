package experiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bundleBoost/domain"
	"bundleBoost/pkg/config"
	"bundleBoost/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type TestRepository interface {
	Create(ctx context.Context, test *domain.ABTest) error
	FindByID(ctx context.Context, id string) (domain.ABTest, error)
	// MarkRunning moves a DRAFT test to RUNNING. ok is false when the test
	// was not in DRAFT.
	MarkRunning(ctx context.Context, id string, at time.Time) (ok bool, err error)
	// Complete stores the final counters and verdict of a RUNNING test and
	// marks it COMPLETED. ok is false when the test was not RUNNING.
	Complete(ctx context.Context, test domain.ABTest) (ok bool, err error)
}

// CounterStore keeps the live counters of running tests. Increments must be
// atomic under concurrent callers.
type CounterStore interface {
	Increment(ctx context.Context, testID string, arm domain.Arm, metric domain.MetricKind, revenue float64) error
	Get(ctx context.Context, testID string) (domain.ABTestCounters, error)
}

// ---- DTOs ----

type CreateInput struct {
	ShopID             uint64
	BundleID           string
	Name               string
	ControlDiscountPct float64
	VariantDiscountPct float64
	Metadata           map[string]any
}

type Assignment struct {
	TestID      string     `json:"test_id"`
	SessionID   string     `json:"session_id"`
	Arm         domain.Arm `json:"arm"`
	DiscountPct float64    `json:"discount_pct"`
}

type ArmStats struct {
	Impressions    int64    `json:"impressions"`
	Conversions    int64    `json:"conversions"`
	Revenue        float64  `json:"revenue"`
	ConversionRate float64  `json:"conversion_rate"`
	Interval       Interval `json:"interval"`
}

type Results struct {
	TestID  string              `json:"test_id"`
	Status  domain.ABTestStatus `json:"status"`
	Control ArmStats            `json:"control"`
	Variant ArmStats            `json:"variant"`
	Verdict domain.Verdict      `json:"verdict"`
}

// ---- Service ----

type ExperimentService struct {
	testRepo TestRepository
	counters CounterStore
	th       Thresholds
	now      func() time.Time
}

func NewExperimentService(testRepo TestRepository, counters CounterStore, th Thresholds) *ExperimentService {
	th = th.atLeastDefault()
	return &ExperimentService{
		testRepo: testRepo,
		counters: counters,
		th:       th,
		now:      time.Now,
	}
}

func ThresholdsFromEngine(ec config.EngineConfig) Thresholds {
	return Thresholds{
		MinImpressionsPerArm: int64(ec.MinImpressionsPerArm),
		ConfidenceLevel:      ec.ConfidenceLevel,
	}.atLeastDefault()
}

func (s *ExperimentService) Create(ctx context.Context, in CreateInput) (domain.ABTest, error) {
	if err := ctx.Err(); err != nil {
		return domain.ABTest{}, fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(in.Name) == "" {
		return domain.ABTest{}, errors.New("name is required")
	}
	if in.ShopID == 0 {
		return domain.ABTest{}, errors.New("shop_id is required")
	}
	if !validPct(in.ControlDiscountPct) || !validPct(in.VariantDiscountPct) {
		return domain.ABTest{}, errors.New("discounts must be between 0 and 100")
	}

	test := domain.ABTest{
		ID:                 uuid.NewString(),
		ShopID:             in.ShopID,
		BundleID:           in.BundleID,
		Name:               in.Name,
		ControlDiscountPct: in.ControlDiscountPct,
		VariantDiscountPct: in.VariantDiscountPct,
		Status:             domain.ABTestStatusDraft,
	}
	if len(in.Metadata) > 0 {
		test.Metadata = datatypes.JSONMap(in.Metadata)
	}

	if err := s.testRepo.Create(ctx, &test); err != nil {
		return domain.ABTest{}, fmt.Errorf("failed to create ab test: %w", err)
	}

	logger.Info("ab test created", "test_id", test.ID, "shop_id", test.ShopID)
	return test, nil
}

func (s *ExperimentService) Get(ctx context.Context, id string) (domain.ABTest, error) {
	if err := ctx.Err(); err != nil {
		return domain.ABTest{}, fmt.Errorf("context error: %w", err)
	}
	return s.testRepo.FindByID(ctx, id)
}

func (s *ExperimentService) Start(ctx context.Context, id string) (domain.ABTest, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return domain.ABTest{}, err
	}
	if !CanTransition(test.Status, domain.ABTestStatusRunning) {
		return domain.ABTest{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, test.Status, domain.ABTestStatusRunning)
	}

	at := s.now()
	ok, err := s.testRepo.MarkRunning(ctx, id, at)
	if err != nil {
		return domain.ABTest{}, fmt.Errorf("failed to start ab test: %w", err)
	}
	if !ok {
		return domain.ABTest{}, fmt.Errorf("%w: test %s is no longer DRAFT", ErrInvalidTransition, id)
	}

	test.Status = domain.ABTestStatusRunning
	test.StartedAt = &at

	ExperimentTransitionsTotal.WithLabelValues(string(test.Status)).Inc()
	logger.Info("ab test started", "test_id", id, "shop_id", test.ShopID)
	return test, nil
}

// Assign returns the arm and discount a session sees. Only RUNNING tests
// assign.
func (s *ExperimentService) Assign(ctx context.Context, id, sessionID string) (Assignment, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Assignment{}, errors.New("session_id is required")
	}

	test, err := s.Get(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if test.Status != domain.ABTestStatusRunning {
		return Assignment{}, ErrTestNotRunning
	}

	arm := AssignVariant(test.ID, sessionID)
	ExperimentAssignmentsTotal.WithLabelValues(string(arm)).Inc()

	return Assignment{
		TestID:      test.ID,
		SessionID:   sessionID,
		Arm:         arm,
		DiscountPct: test.DiscountFor(arm),
	}, nil
}

// RecordMetric counts one impression or conversion for an arm. revenue is
// only added for conversions.
func (s *ExperimentService) RecordMetric(ctx context.Context, id string, arm domain.Arm, metric domain.MetricKind, revenue float64) error {
	if !validArm(arm) {
		return fmt.Errorf("%w: %q", ErrInvalidArm, arm)
	}
	if !validMetric(metric) {
		return fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}

	test, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if test.Status != domain.ABTestStatusRunning {
		return ErrTestNotRunning
	}

	if metric != domain.MetricConversion || revenue < 0 {
		revenue = 0
	}

	if err := s.counters.Increment(ctx, id, arm, metric, revenue); err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}

	ExperimentEventsTotal.WithLabelValues(string(arm), string(metric)).Inc()
	return nil
}

// Results reports per-arm statistics and the current verdict: live counters
// while RUNNING, the stored snapshot once COMPLETED.
func (s *ExperimentService) Results(ctx context.Context, id string) (Results, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return Results{}, err
	}

	counters := test.ABTestCounters
	if test.Status == domain.ABTestStatusRunning {
		counters, err = s.counters.Get(ctx, id)
		if err != nil {
			return Results{}, fmt.Errorf("failed to read counters: %w", err)
		}
	}

	return Results{
		TestID:  test.ID,
		Status:  test.Status,
		Control: s.armStats(counters.ControlImpressions, counters.ControlConversions, counters.ControlRevenue),
		Variant: s.armStats(counters.VariantImpressions, counters.VariantConversions, counters.VariantRevenue),
		Verdict: CalculateWinner(counters, s.th),
	}, nil
}

// Stop completes a RUNNING test: the live counters are frozen into the test
// row together with the verdict.
func (s *ExperimentService) Stop(ctx context.Context, id string) (domain.ABTest, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return domain.ABTest{}, err
	}
	if !CanTransition(test.Status, domain.ABTestStatusCompleted) {
		return domain.ABTest{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, test.Status, domain.ABTestStatusCompleted)
	}

	counters, err := s.counters.Get(ctx, id)
	if err != nil {
		return domain.ABTest{}, fmt.Errorf("failed to read counters: %w", err)
	}

	verdict := CalculateWinner(counters, s.th)
	at := s.now()

	test.ABTestCounters = counters
	test.WinnerArm = verdict.Winner
	test.Confidence = verdict.Confidence
	test.Status = domain.ABTestStatusCompleted
	test.EndedAt = &at

	ok, err := s.testRepo.Complete(ctx, test)
	if err != nil {
		return domain.ABTest{}, fmt.Errorf("failed to stop ab test: %w", err)
	}
	if !ok {
		return domain.ABTest{}, fmt.Errorf("%w: test %s is no longer RUNNING", ErrInvalidTransition, id)
	}

	winner := "none"
	if verdict.Winner != nil {
		winner = string(*verdict.Winner)
	}
	ExperimentTransitionsTotal.WithLabelValues(string(test.Status)).Inc()
	logger.Info("ab test completed",
		"test_id", id,
		"shop_id", test.ShopID,
		"winner", winner,
		"confidence", verdict.Confidence,
	)

	return test, nil
}

func (s *ExperimentService) armStats(impressions, conversions int64, revenue float64) ArmStats {
	rate := 0.0
	if impressions > 0 {
		rate = float64(conversions) / float64(impressions)
	}
	return ArmStats{
		Impressions:    impressions,
		Conversions:    conversions,
		Revenue:        revenue,
		ConversionRate: rate,
		Interval:       WilsonInterval(conversions, impressions, s.th.ConfidenceLevel),
	}
}

func validPct(v float64) bool {
	return v >= 0 && v <= 100
}
