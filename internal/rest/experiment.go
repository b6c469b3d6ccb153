package rest

import (
	"context"
	"net/http"
	"time"

	"bundleBoost/business/experiment"
	"bundleBoost/domain"
	"bundleBoost/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ExperimentService interface {
		Create(ctx context.Context, in experiment.CreateInput) (domain.ABTest, error)
		Get(ctx context.Context, id string) (domain.ABTest, error)
		Start(ctx context.Context, id string) (domain.ABTest, error)
		Stop(ctx context.Context, id string) (domain.ABTest, error)
		Assign(ctx context.Context, id, sessionID string) (experiment.Assignment, error)
		RecordMetric(ctx context.Context, id string, arm domain.Arm, metric domain.MetricKind, revenue float64) error
		Results(ctx context.Context, id string) (experiment.Results, error)
	}

	ExperimentHandler struct {
		experiments ExperimentService
		validate    *validator.Validate
		timeout     time.Duration
	}
)

func NewExperimentHandler(experiments ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		experiments: experiments,
		validate:    validator.New(),
		timeout:     10 * time.Second,
	}
}

type CreateExperimentRequest struct {
	ShopID             uint64         `json:"shop_id" validate:"required"`
	BundleID           string         `json:"bundle_id" validate:"omitempty,uuid"`
	Name               string         `json:"name" validate:"required,max=200"`
	ControlDiscountPct float64        `json:"control_discount_pct" validate:"gte=0,lte=100"`
	VariantDiscountPct float64        `json:"variant_discount_pct" validate:"gte=0,lte=100"`
	Metadata           map[string]any `json:"metadata"`
}

type TrackMetricRequest struct {
	Arm     domain.Arm        `json:"arm" validate:"required,oneof=control variant"`
	Metric  domain.MetricKind `json:"metric" validate:"required,oneof=impression conversion"`
	Revenue float64           `json:"revenue" validate:"gte=0"`
}

func (h *ExperimentHandler) Create(c echo.Context) error {
	var req CreateExperimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if !canAccessShop(c, req.ShopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	test, err := h.experiments.Create(ctx, experiment.CreateInput{
		ShopID:             req.ShopID,
		BundleID:           req.BundleID,
		Name:               req.Name,
		ControlDiscountPct: req.ControlDiscountPct,
		VariantDiscountPct: req.VariantDiscountPct,
		Metadata:           req.Metadata,
	})
	if err != nil {
		logger.Error("failed to create ab test", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(test))
}

func (h *ExperimentHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	test, err := h.ownedTest(ctx, c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(test))
}

func (h *ExperimentHandler) Start(c echo.Context) error {
	return h.transition(c, h.experiments.Start)
}

func (h *ExperimentHandler) Stop(c echo.Context) error {
	return h.transition(c, h.experiments.Stop)
}

func (h *ExperimentHandler) Results(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.ownedTest(ctx, c); err != nil {
		return err
	}

	res, err := h.experiments.Results(ctx, c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// Assign is called by the storefront for every session that sees the bundle.
func (h *ExperimentHandler) Assign(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "session_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	a, err := h.experiments.Assign(ctx, c.Param("id"), sessionID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(a))
}

func (h *ExperimentHandler) Track(c echo.Context) error {
	var req TrackMetricRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.experiments.RecordMetric(ctx, c.Param("id"), req.Arm, req.Metric, req.Revenue); err != nil {
		return errorJSON(c, err)
	}

	return c.NoContent(http.StatusAccepted)
}

func (h *ExperimentHandler) transition(c echo.Context, fn func(context.Context, string) (domain.ABTest, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.ownedTest(ctx, c); err != nil {
		return err
	}

	test, err := fn(ctx, c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(test))
}

// ownedTest loads the path's test, refusing tests of another shop.
func (h *ExperimentHandler) ownedTest(ctx context.Context, c echo.Context) (domain.ABTest, error) {
	test, err := h.experiments.Get(ctx, c.Param("id"))
	if err != nil {
		return domain.ABTest{}, echo.NewHTTPError(statusFor(err), err.Error())
	}
	if !canAccessShop(c, test.ShopID) {
		return domain.ABTest{}, echo.NewHTTPError(http.StatusForbidden, "shop access denied")
	}
	return test, nil
}
