package rest

import (
	"context"
	"net/http"
	"time"

	"bundleBoost/business/product"
	"bundleBoost/domain"
	"bundleBoost/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	GetProductByID(ctx context.Context, id uint64) (*domain.Product, error)
	GetProductMargin(ctx context.Context, id uint64) (*product.ProductMargin, error)
	UpsertProductCost(ctx context.Context, p *domain.Product) (*domain.Product, error)
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type UpdateProductCostRequest struct {
	Price             *float64 `json:"price" validate:"omitempty,gte=0"`
	Cogs              float64  `json:"cogs" validate:"gte=0"`
	ShippingCost      float64  `json:"shipping_cost" validate:"gte=0"`
	AdditionalCosts   float64  `json:"additional_costs" validate:"gte=0"`
	InventoryQuantity *int     `json:"inventory_quantity" validate:"omitempty,gte=0"`
}

func (h *ProductHandler) GetProductMargin(c echo.Context) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	margin, err := h.productService.GetProductMargin(ctx, productID)
	if err != nil {
		return errorJSON(c, err)
	}

	if !canAccessShop(c, margin.ShopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(margin))
}

func (h *ProductHandler) UpdateProductCost(c echo.Context) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req UpdateProductCostRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	existing, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		return errorJSON(c, err)
	}

	if !canAccessShop(c, existing.ShopID) {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "shop access denied"})
	}

	updated := *existing
	updated.Cogs = req.Cogs
	updated.ShippingCost = req.ShippingCost
	updated.AdditionalCosts = req.AdditionalCosts
	if req.Price != nil {
		updated.Price = *req.Price
	}
	if req.InventoryQuantity != nil {
		updated.InventoryQuantity = *req.InventoryQuantity
	}

	saved, err := h.productService.UpsertProductCost(ctx, &updated)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(saved))
}
