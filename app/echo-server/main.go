package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bundleBoost/app/echo-server/router"
	"bundleBoost/business/bundlegen"
	"bundleBoost/business/experiment"
	"bundleBoost/business/optimization"
	"bundleBoost/business/product"
	"bundleBoost/business/shopconfig"
	"bundleBoost/internal/middleware"
	psqlRepo "bundleBoost/internal/repository/postgres"
	redisRepo "bundleBoost/internal/repository/redis"
	"bundleBoost/internal/rest"
	"bundleBoost/pkg/config"
	"bundleBoost/pkg/database"
	redisdb "bundleBoost/pkg/database/redis"
	"bundleBoost/pkg/logger"
	"bundleBoost/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Bundle Boost", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	redisClient, err := redisdb.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		if err := redisdb.Close(redisClient); err != nil {
			logger.Error("Failed to close redis", "error", err)
		}
	}()

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	bundleRepo := psqlRepo.NewBundleRepository(db)
	eventRepo := psqlRepo.NewBundleEventRepository(db)
	testRepo := psqlRepo.NewABTestRepository(db)
	settingsRepo := psqlRepo.NewShopSettingsRepository(db)
	counterStore := redisRepo.NewCounterStore(redisClient)

	// Init service
	cfgLoader := shopconfig.NewLoader(settingsRepo)
	productService := product.NewProductService(productRepo, cfgLoader)
	generationService := bundlegen.NewGenerationService(productRepo, bundleRepo, cfgLoader, bundlegen.OptionsFromEngine(cfg.Engine))
	optimizationService := optimization.NewOptimizationService(bundleRepo, eventRepo, productRepo, eventRepo, cfgLoader, optimization.OptionsFromEngine(cfg.Engine))
	experimentService := experiment.NewExperimentService(testRepo, counterStore, experiment.ThresholdsFromEngine(cfg.Engine))

	// Init handler
	productHandler := rest.NewProductHandler(productService)
	pricingHandler := rest.NewPricingHandler(bundlegen.OptionsFromEngine(cfg.Engine).Searcher)
	bundleHandler := rest.NewBundleHandler(generationService, optimizationService, bundleRepo, eventRepo)
	settingsHandler := rest.NewShopSettingsHandler(cfgLoader)
	experimentHandler := rest.NewExperimentHandler(experimentService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	metrics.Init(prometheus.DefaultRegisterer)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)

	// Setup routes
	router.SetupHealthRoutes(e)
	api := e.Group("/api/v1")
	router.SetupStorefrontRoutes(api, bundleHandler, experimentHandler)
	router.SetupProductRoutes(api, productHandler, authRequired)
	router.SetupPricingRoutes(api, pricingHandler, authRequired)
	router.SetupShopRoutes(api, bundleHandler, settingsHandler, authRequired)
	router.SetupExperimentRoutes(api, experimentHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
