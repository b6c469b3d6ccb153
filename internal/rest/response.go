package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bundleBoost/business/experiment"
	"bundleBoost/domain"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrBundleNotFound),
		errors.Is(err, domain.ErrTestNotFound):
		return http.StatusNotFound
	case errors.Is(err, experiment.ErrInvalidTransition),
		errors.Is(err, experiment.ErrTestNotRunning):
		return http.StatusConflict
	case errors.Is(err, experiment.ErrInvalidArm),
		errors.Is(err, experiment.ErrInvalidMetric):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
}

func parseUintParam(c echo.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

// canAccessShop lets admins through and merchants only to their own shop.
// Requests that carry no claims at all are left to the router's auth.
func canAccessShop(c echo.Context, shopID uint64) bool {
	role, _ := c.Get("role").(string)
	if strings.EqualFold(role, "admin") {
		return true
	}
	claimed, ok := c.Get("shop_id").(uint64)
	if !ok {
		return c.Get("claims") == nil
	}
	return claimed == shopID
}
