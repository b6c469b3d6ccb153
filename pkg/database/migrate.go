package database

import (
	"fmt"

	"bundleBoost/domain"

	"gorm.io/gorm"
)

// Migrate creates or extends the engine's tables. It never drops columns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.ShopSettings{},
		&domain.Product{},
		&domain.Bundle{},
		&domain.BundleItem{},
		&domain.BundleEvent{},
		&domain.BundleDiscountChange{},
		&domain.ABTest{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
