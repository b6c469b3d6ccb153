package domain

import "time"

type BundleEventType string

const (
	BundleEventView      BundleEventType = "view"
	BundleEventAddToCart BundleEventType = "add_to_cart"
	BundleEventPurchase  BundleEventType = "purchase"
)

// BundleEvent is a raw storefront event; the engine only ever reads counts.
type BundleEvent struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	BundleID  string          `gorm:"column:bundle_id;type:uuid;index:idx_bundle_events_lookup,priority:1;not null" json:"bundle_id"`
	EventType BundleEventType `gorm:"column:event_type;type:text;index:idx_bundle_events_lookup,priority:2;not null" json:"event_type"`
	SessionID string          `gorm:"column:session_id;type:text" json:"session_id"`
	CreatedAt time.Time       `gorm:"column:created_at;index:idx_bundle_events_lookup,priority:3;autoCreateTime" json:"created_at"`
}

func (BundleEvent) TableName() string {
	return "bundle_events"
}

type DiscountChangeReason string

const (
	DiscountChangeManual              DiscountChangeReason = "manual"
	DiscountChangeRevenueOptimization DiscountChangeReason = "revenue_optimization"
)

// BundleDiscountChange records the discount that was active before AppliedAt.
type BundleDiscountChange struct {
	ID                  uint64               `gorm:"primaryKey;autoIncrement" json:"id"`
	BundleID            string               `gorm:"column:bundle_id;type:uuid;index;not null" json:"bundle_id"`
	PreviousDiscountPct float64              `gorm:"column:previous_discount_pct;type:numeric" json:"previous_discount_pct"`
	NewDiscountPct      float64              `gorm:"column:new_discount_pct;type:numeric" json:"new_discount_pct"`
	Reason              DiscountChangeReason `gorm:"column:reason;type:text" json:"reason"`
	AppliedAt           time.Time            `gorm:"column:applied_at;not null" json:"applied_at"`
}

func (BundleDiscountChange) TableName() string {
	return "bundle_discount_changes"
}
