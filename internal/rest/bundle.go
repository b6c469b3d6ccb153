package rest

import (
	"context"
	"net/http"
	"time"

	"bundleBoost/business/optimization"
	"bundleBoost/domain"
	"bundleBoost/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type (
	GenerationService interface {
		GenerateForShop(ctx context.Context, shopID uint64) ([]domain.Bundle, error)
	}

	OptimizationService interface {
		OptimizeShop(ctx context.Context, shopID uint64, now time.Time) ([]optimization.Outcome, error)
	}

	BundleReader interface {
		FindByID(ctx context.Context, id string) (domain.Bundle, error)
	}

	BundleEventRecorder interface {
		SaveEvent(ctx context.Context, event domain.BundleEvent) error
	}

	BundleHandler struct {
		generation   GenerationService
		optimization OptimizationService
		bundles      BundleReader
		events       BundleEventRecorder
		validate     *validator.Validate
		timeout      time.Duration
	}
)

func NewBundleHandler(generation GenerationService, optimization OptimizationService, bundles BundleReader, events BundleEventRecorder) *BundleHandler {
	return &BundleHandler{
		generation:   generation,
		optimization: optimization,
		bundles:      bundles,
		events:       events,
		validate:     validator.New(),
		timeout:      60 * time.Second,
	}
}

type TrackBundleEventRequest struct {
	EventType domain.BundleEventType `json:"event_type" validate:"required,oneof=view add_to_cart purchase"`
	SessionID string                 `json:"session_id" validate:"max=128"`
}

func (h *BundleHandler) Generate(c echo.Context) error {
	shopID, err := parseUintParam(c, "shop_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if !canAccessShop(c, shopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	bundles, err := h.generation.GenerateForShop(ctx, shopID)
	if err != nil {
		logger.Error("bundle generation failed", "shop_id", shopID, "error", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(bundles))
}

func (h *BundleHandler) Optimize(c echo.Context) error {
	shopID, err := parseUintParam(c, "shop_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if !canAccessShop(c, shopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	outcomes, err := h.optimization.OptimizeShop(ctx, shopID, time.Now())
	if err != nil {
		logger.Error("discount optimization failed", "shop_id", shopID, "error", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(outcomes))
}

// TrackEvent records a storefront view, add-to-cart or purchase of an ACTIVE
// bundle.
func (h *BundleHandler) TrackEvent(c echo.Context) error {
	bundleID := c.Param("id")
	if _, err := uuid.Parse(bundleID); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid bundle id"})
	}

	var req TrackBundleEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bundle, err := h.bundles.FindByID(ctx, bundleID)
	if err != nil {
		return errorJSON(c, err)
	}
	if bundle.Status != domain.BundleStatusActive {
		return c.JSON(http.StatusConflict, ResponseError{Message: "bundle is not active"})
	}

	err = h.events.SaveEvent(ctx, domain.BundleEvent{
		BundleID:  bundleID,
		EventType: req.EventType,
		SessionID: req.SessionID,
	})
	if err != nil {
		logger.Error("failed to save bundle event", "bundle_id", bundleID, "error", err)
		return errorJSON(c, err)
	}

	return c.NoContent(http.StatusAccepted)
}
