package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bundleboost_http_request_duration_seconds",
		Help:    "Latency of API handlers by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bundleboost_http_requests_total",
		Help: "Total API requests by route and status",
	}, []string{"method", "route", "status"})
)

func Init(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequestDuration, HTTPRequestsTotal)
}

// Middleware records latency and count for every request, keyed by the
// route template rather than the raw path.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			labels := []string{c.Request().Method, c.Path(), strconv.Itoa(status)}
			HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}
