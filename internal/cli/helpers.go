package cli

import (
	"context"
	"errors"
	"fmt"

	"bundleBoost/business/bundlegen"
	"bundleBoost/business/experiment"
	"bundleBoost/business/optimization"
	"bundleBoost/business/shopconfig"
	psqlRepo "bundleBoost/internal/repository/postgres"
	redisRepo "bundleBoost/internal/repository/redis"
	"bundleBoost/pkg/config"
	"bundleBoost/pkg/database"
	redisdb "bundleBoost/pkg/database/redis"
	"bundleBoost/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// engine is the set of services a job needs, wired the same way as the server.
type engine struct {
	settings     *psqlRepo.ShopSettingsRepository
	generation   *bundlegen.GenerationService
	optimization *optimization.OptimizationService
	experiments  *experiment.ExperimentService
}

// withEngine opens the database (and redis when needRedis), executes the
// function, and handles cleanup.
func withEngine(ctx context.Context, needRedis bool, fn func(*engine) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.InitPostgres(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	productRepo := psqlRepo.NewProductRepository(db)
	bundleRepo := psqlRepo.NewBundleRepository(db)
	eventRepo := psqlRepo.NewBundleEventRepository(db)
	settingsRepo := psqlRepo.NewShopSettingsRepository(db)
	cfgLoader := shopconfig.NewLoader(settingsRepo)

	eng := &engine{
		settings:     settingsRepo,
		generation:   bundlegen.NewGenerationService(productRepo, bundleRepo, cfgLoader, bundlegen.OptionsFromEngine(cfg.Engine)),
		optimization: optimization.NewOptimizationService(bundleRepo, eventRepo, productRepo, eventRepo, cfgLoader, optimization.OptionsFromEngine(cfg.Engine)),
	}

	if needRedis {
		client, err := redisdb.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisdb.Close(client)

		eng.experiments = experiment.NewExperimentService(
			psqlRepo.NewABTestRepository(db),
			redisRepo.NewCounterStore(client),
			experiment.ThresholdsFromEngine(cfg.Engine),
		)
	}

	return fn(eng)
}

// shopTargets resolves --shop / --all into the shops a job runs for.
func shopTargets(ctx context.Context, eng *engine, shopID uint64, all bool, enabledColumn string) ([]uint64, error) {
	switch {
	case all && shopID != 0:
		return nil, errors.New("use either --shop or --all, not both")
	case all:
		return eng.settings.ListShopIDs(ctx, enabledColumn)
	case shopID != 0:
		return []uint64{shopID}, nil
	default:
		return nil, errors.New("one of --shop or --all is required")
	}
}

// forEachShop runs fn for every shop with at most limit in flight. A failing
// shop is logged and counted; the others still run.
func forEachShop(ctx context.Context, shops []uint64, limit int, fn func(context.Context, uint64) error) error {
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	failed := make([]bool, len(shops))
	for i, shopID := range shops {
		g.Go(func() error {
			if err := fn(gctx, shopID); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				logger.Error("shop job failed", "shop_id", shopID, "error", err)
				failed[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d of %d shops failed", n, len(shops))
	}
	return nil
}
