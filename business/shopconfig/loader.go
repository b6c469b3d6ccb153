package shopconfig

import (
	"context"
	"errors"
	"fmt"

	"bundleBoost/domain"
	"bundleBoost/pkg/logger"
)

type Loader struct {
	repo SettingsRepository
}

func NewLoader(repo SettingsRepository) *Loader {
	return &Loader{repo: repo}
}

// Load reads the shop's settings row and resolves it against the defaults.
// A missing row is not an error: the shop simply runs on defaults.
func (l *Loader) Load(ctx context.Context, shopID uint64) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, fmt.Errorf("context error: %w", err)
	}

	if l.repo == nil {
		return DefaultConfig(shopID), nil
	}

	row, ok, err := l.repo.GetSettings(ctx, shopID)
	if err != nil {
		return Config{}, fmt.Errorf("load shop settings: %w", err)
	}
	if !ok {
		logger.Debug("shop settings not found, using defaults", "shop_id", shopID)
		return DefaultConfig(shopID), nil
	}

	return Resolve(row), nil
}

// Save validates and stores a settings row, returning the configuration the
// engines will now run on.
func (l *Loader) Save(ctx context.Context, row domain.ShopSettings) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, fmt.Errorf("context error: %w", err)
	}
	if l.repo == nil {
		return Config{}, errors.New("settings repository not configured")
	}
	if err := Validate(row); err != nil {
		return Config{}, err
	}

	if err := l.repo.UpsertSettings(ctx, row); err != nil {
		return Config{}, fmt.Errorf("save shop settings: %w", err)
	}

	logger.Info("shop settings saved", "shop_id", row.ShopID)
	return Resolve(row), nil
}
