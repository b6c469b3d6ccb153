package router

import (
	"net/http"

	"bundleBoost/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupHealthRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products", authRequired)

	products.GET("/:id/margin", handler.GetProductMargin)
	products.PUT("/:id/cost", handler.UpdateProductCost)
}

func SetupPricingRoutes(api *echo.Group, handler *rest.PricingHandler, authRequired echo.MiddlewareFunc) {
	pricing := api.Group("/pricing", authRequired)
	pricing.POST("/bundle-margin", handler.BundleMargin)
}

func SetupShopRoutes(api *echo.Group, bundles *rest.BundleHandler, settings *rest.ShopSettingsHandler, authRequired echo.MiddlewareFunc) {
	shops := api.Group("/shops/:shop_id", authRequired)

	shops.GET("/settings", settings.Get)
	shops.PUT("/settings", settings.Put)
	shops.POST("/bundles/generate", bundles.Generate)
	shops.POST("/bundles/optimize", bundles.Optimize)
}

// SetupStorefrontRoutes are called from the shop's storefront and carry no
// merchant token.
func SetupStorefrontRoutes(api *echo.Group, bundles *rest.BundleHandler, experiments *rest.ExperimentHandler) {
	api.POST("/bundles/:id/events", bundles.TrackEvent)
	api.GET("/experiments/:id/assign", experiments.Assign)
	api.POST("/experiments/:id/track", experiments.Track)
}

func SetupExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler, authRequired echo.MiddlewareFunc) {
	experiments := api.Group("/experiments", authRequired)

	experiments.POST("", handler.Create)
	experiments.GET("/:id", handler.Get)
	experiments.POST("/:id/start", handler.Start)
	experiments.POST("/:id/stop", handler.Stop)
	experiments.GET("/:id/results", handler.Results)
}
