package middleware

import (
	"errors"
	"net/http"

	"bundleBoost/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every unhandled error as {"message": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		logger.Error("unhandled error", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, responseError{Message: message})
	}
	if err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}
