package rest

import (
	"context"
	"net/http"
	"time"

	"bundleBoost/business/shopconfig"
	"bundleBoost/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type ShopSettingsService interface {
	Load(ctx context.Context, shopID uint64) (shopconfig.Config, error)
	Save(ctx context.Context, row domain.ShopSettings) (shopconfig.Config, error)
}

type ShopSettingsHandler struct {
	settings ShopSettingsService
	timeout  time.Duration
}

func NewShopSettingsHandler(settings ShopSettingsService) *ShopSettingsHandler {
	return &ShopSettingsHandler{
		settings: settings,
		timeout:  10 * time.Second,
	}
}

// Get returns the shop's effective configuration, defaults applied.
func (h *ShopSettingsHandler) Get(c echo.Context) error {
	shopID, err := parseUintParam(c, "shop_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if !canAccessShop(c, shopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.settings.Load(ctx, shopID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

// Put replaces the shop's settings row. Omitted fields fall back to defaults.
func (h *ShopSettingsHandler) Put(c echo.Context) error {
	shopID, err := parseUintParam(c, "shop_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if !canAccessShop(c, shopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	var row domain.ShopSettings
	if err := c.Bind(&row); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	row.ShopID = shopID

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.settings.Save(ctx, row)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}
