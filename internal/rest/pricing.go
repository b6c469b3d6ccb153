package rest

import (
	"net/http"

	"bundleBoost/business/pricing"
	"bundleBoost/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PricingHandler struct {
	searcher  pricing.Searcher
	validator *validator.Validate
}

func NewPricingHandler(searcher pricing.Searcher) *PricingHandler {
	return &PricingHandler{
		searcher:  searcher,
		validator: validator.New(),
	}
}

type BundleMarginRequest struct {
	Items        []domain.CostItem  `json:"items" validate:"required,min=1,dive"`
	DiscountPct  float64            `json:"discount_pct" validate:"gte=0,lte=100"`
	Fee          domain.FeeSchedule `json:"fee"`
	MinMarginPct *float64           `json:"min_margin_pct" validate:"omitempty,gte=0,lt=100"`
}

type BundleMarginResponse struct {
	domain.MarginResult
	IndividualTotal    float64  `json:"individual_total"`
	OptimalDiscountPct *float64 `json:"optimal_discount_pct,omitempty"`
}

// BundleMargin previews a bundle's margin at a discount and, when a margin
// floor is given, the deepest discount that still clears it.
func (h *PricingHandler) BundleMargin(c echo.Context) error {
	var req BundleMarginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	resp := BundleMarginResponse{
		MarginResult:    pricing.Rounded(pricing.CalculateBundleMargin(req.Items, req.DiscountPct, req.Fee)),
		IndividualTotal: pricing.RoundMoney(pricing.IndividualTotal(req.Items)),
	}

	if req.MinMarginPct != nil {
		d := h.searcher.FindOptimalDiscount(req.Items, req.Fee, *req.MinMarginPct)
		resp.OptimalDiscountPct = &d
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}
