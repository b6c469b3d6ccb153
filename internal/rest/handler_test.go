//go:build !integration

package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bundleBoost/business/experiment"
	"bundleBoost/business/optimization"
	"bundleBoost/business/pricing"
	"bundleBoost/domain"
	"bundleBoost/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExperiments struct {
	test     domain.ABTest
	startErr error
	recorded []domain.MetricKind
}

func (f *fakeExperiments) Create(_ context.Context, in experiment.CreateInput) (domain.ABTest, error) {
	return domain.ABTest{ID: "t-new", ShopID: in.ShopID, Name: in.Name, Status: domain.ABTestStatusDraft}, nil
}

func (f *fakeExperiments) Get(_ context.Context, id string) (domain.ABTest, error) {
	if id != f.test.ID {
		return domain.ABTest{}, domain.ErrTestNotFound
	}
	return f.test, nil
}

func (f *fakeExperiments) Start(_ context.Context, _ string) (domain.ABTest, error) {
	if f.startErr != nil {
		return domain.ABTest{}, f.startErr
	}
	t := f.test
	t.Status = domain.ABTestStatusRunning
	return t, nil
}

func (f *fakeExperiments) Stop(_ context.Context, _ string) (domain.ABTest, error) {
	t := f.test
	t.Status = domain.ABTestStatusCompleted
	return t, nil
}

func (f *fakeExperiments) Assign(_ context.Context, id, sessionID string) (experiment.Assignment, error) {
	return experiment.Assignment{TestID: id, SessionID: sessionID, Arm: experiment.AssignVariant(id, sessionID)}, nil
}

func (f *fakeExperiments) RecordMetric(_ context.Context, _ string, _ domain.Arm, metric domain.MetricKind, _ float64) error {
	f.recorded = append(f.recorded, metric)
	return nil
}

func (f *fakeExperiments) Results(_ context.Context, id string) (experiment.Results, error) {
	return experiment.Results{TestID: id, Status: f.test.Status}, nil
}

type fakeBundles struct {
	stored map[string]domain.Bundle
	events []domain.BundleEvent
}

func (f *fakeBundles) FindByID(_ context.Context, id string) (domain.Bundle, error) {
	b, ok := f.stored[id]
	if !ok {
		return domain.Bundle{}, domain.ErrBundleNotFound
	}
	return b, nil
}

func (f *fakeBundles) GenerateForShop(_ context.Context, shopID uint64) ([]domain.Bundle, error) {
	return []domain.Bundle{{ID: "b-1", ShopID: shopID}}, nil
}

func (f *fakeBundles) OptimizeShop(_ context.Context, _ uint64, _ time.Time) ([]optimization.Outcome, error) {
	return nil, nil
}

func (f *fakeBundles) SaveEvent(_ context.Context, event domain.BundleEvent) error {
	f.events = append(f.events, event)
	return nil
}

// withShop simulates the auth middleware for a merchant of shopID.
func withShop(shopID uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("claims", &middleware.Claims{ShopID: shopID, Role: "merchant"})
			c.Set("shop_id", shopID)
			c.Set("role", "merchant")
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func experimentServer(svc ExperimentService, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	h := NewExperimentHandler(svc)
	g := e.Group("/experiments", mw...)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/start", h.Start)
	g.POST("/:id/stop", h.Stop)
	g.GET("/:id/results", h.Results)
	e.GET("/experiments/:id/assign", h.Assign)
	e.POST("/experiments/:id/track", h.Track)
	return e
}

func TestExperimentHandler_Lifecycle(t *testing.T) {
	svc := &fakeExperiments{test: domain.ABTest{ID: "t-1", ShopID: 7, Status: domain.ABTestStatusDraft}}
	e := experimentServer(svc, withShop(7))

	rec := do(e, http.MethodPost, "/experiments", `{"shop_id":7,"name":"spring","control_discount_pct":10,"variant_discount_pct":20}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/experiments/t-1/start", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/experiments/t-1/results", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/experiments/missing", "").Code)

	svc.startErr = experiment.ErrInvalidTransition
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/experiments/t-1/start", "").Code)
}

func TestExperimentHandler_RejectsOtherShop(t *testing.T) {
	svc := &fakeExperiments{test: domain.ABTest{ID: "t-1", ShopID: 7}}
	e := experimentServer(svc, withShop(8))

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/experiments/t-1", "").Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/experiments/t-1/stop", "").Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/experiments", `{"shop_id":7,"name":"x"}`).Code)
}

func TestExperimentHandler_AssignAndTrack(t *testing.T) {
	svc := &fakeExperiments{test: domain.ABTest{ID: "t-1", ShopID: 7}}
	e := experimentServer(svc)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/experiments/t-1/assign", "").Code)

	rec := do(e, http.MethodGet, "/experiments/t-1/assign?session_id=s-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"s-1"`)

	assert.Equal(t, http.StatusAccepted, do(e, http.MethodPost, "/experiments/t-1/track", `{"arm":"variant","metric":"conversion","revenue":42.5}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/experiments/t-1/track", `{"arm":"both","metric":"conversion"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/experiments/t-1/track", `{"arm":"control","metric":"click"}`).Code)
	assert.Equal(t, []domain.MetricKind{domain.MetricConversion}, svc.recorded)
}

func TestPricingHandler_BundleMargin(t *testing.T) {
	e := echo.New()
	e.POST("/pricing/bundle-margin", NewPricingHandler(pricing.DefaultSearcher()).BundleMargin)

	body := `{
		"items":[{"price":100,"cogs":40,"shipping_cost":5,"quantity":1}],
		"discount_pct":10,
		"fee":{"payment_processing_pct":2.9,"payment_processing_flat":0.3},
		"min_margin_pct":20
	}`
	rec := do(e, http.MethodPost, "/pricing/bundle-margin", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"effective_price":90`)
	assert.Contains(t, rec.Body.String(), `"individual_total":100`)
	assert.Contains(t, rec.Body.String(), `"optimal_discount_pct":41`)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/pricing/bundle-margin", `{"items":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/pricing/bundle-margin", `{"items":[{"price":10,"quantity":0}]}`).Code)
}

func TestBundleHandler(t *testing.T) {
	const (
		bundleID = "9b2f3c1e-5d7a-4e8b-9c0d-1a2b3c4d5e6f"
		draftID  = "0c7d1e2f-3a4b-4c5d-8e6f-7a8b9c0d1e2f"
		unknown  = "11111111-2222-4333-8444-555555555555"
	)
	fake := &fakeBundles{stored: map[string]domain.Bundle{
		bundleID: {ID: bundleID, ShopID: 3, Status: domain.BundleStatusActive},
		draftID:  {ID: draftID, ShopID: 3, Status: domain.BundleStatusDraft},
	}}
	h := NewBundleHandler(fake, fake, fake, fake)

	e := echo.New()
	shop := e.Group("/shops/:shop_id", withShop(3))
	shop.POST("/bundles/generate", h.Generate)
	shop.POST("/bundles/optimize", h.Optimize)
	e.POST("/bundles/:id/events", h.TrackEvent)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/shops/3/bundles/generate", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/shops/3/bundles/optimize", "").Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/shops/4/bundles/generate", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/shops/abc/bundles/generate", "").Code)

	assert.Equal(t, http.StatusAccepted, do(e, http.MethodPost, "/bundles/"+bundleID+"/events", `{"event_type":"view","session_id":"s-9"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/bundles/"+bundleID+"/events", `{"event_type":"refund"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/bundles/not-a-uuid/events", `{"event_type":"view"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPost, "/bundles/"+unknown+"/events", `{"event_type":"view"}`).Code)
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/bundles/"+draftID+"/events", `{"event_type":"purchase"}`).Code)

	require.Len(t, fake.events, 1)
	assert.Equal(t, domain.BundleEventView, fake.events[0].EventType)
}
