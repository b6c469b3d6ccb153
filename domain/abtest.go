package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ABTestStatus string

const (
	ABTestStatusDraft     ABTestStatus = "DRAFT"
	ABTestStatusRunning   ABTestStatus = "RUNNING"
	ABTestStatusCompleted ABTestStatus = "COMPLETED"
)

type Arm string

const (
	ArmControl Arm = "control"
	ArmVariant Arm = "variant"
)

type MetricKind string

const (
	MetricImpression MetricKind = "impression"
	MetricConversion MetricKind = "conversion"
)

// ABTestCounters are the running totals of one experiment.
type ABTestCounters struct {
	ControlImpressions int64   `gorm:"column:control_impressions;default:0" json:"control_impressions"`
	ControlConversions int64   `gorm:"column:control_conversions;default:0" json:"control_conversions"`
	ControlRevenue     float64 `gorm:"column:control_revenue;type:numeric;default:0" json:"control_revenue"`
	VariantImpressions int64   `gorm:"column:variant_impressions;default:0" json:"variant_impressions"`
	VariantConversions int64   `gorm:"column:variant_conversions;default:0" json:"variant_conversions"`
	VariantRevenue     float64 `gorm:"column:variant_revenue;type:numeric;default:0" json:"variant_revenue"`
}

type ABTest struct {
	ID                 string            `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	ShopID             uint64            `gorm:"column:shop_id;index;not null" json:"shop_id"`
	BundleID           string            `gorm:"column:bundle_id;type:uuid;index" json:"bundle_id"`
	Name               string            `gorm:"column:name;type:text" json:"name"`
	ControlDiscountPct float64           `gorm:"column:control_discount_pct;type:numeric" json:"control_discount_pct"`
	VariantDiscountPct float64           `gorm:"column:variant_discount_pct;type:numeric" json:"variant_discount_pct"`
	Status             ABTestStatus      `gorm:"column:status;type:text;not null" json:"status"`
	ABTestCounters     `gorm:"embedded"`
	WinnerArm          *Arm              `gorm:"column:winner_arm;type:text" json:"winner_arm"`
	Confidence         float64           `gorm:"column:confidence;type:numeric" json:"confidence"`
	Metadata           datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	StartedAt          *time.Time        `gorm:"column:started_at" json:"started_at"`
	EndedAt            *time.Time        `gorm:"column:ended_at" json:"ended_at"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ABTest) TableName() string {
	return "ab_tests"
}

// DiscountFor returns the discount shown to the given arm.
func (t ABTest) DiscountFor(arm Arm) float64 {
	if arm == ArmVariant {
		return t.VariantDiscountPct
	}
	return t.ControlDiscountPct
}

// Verdict is the outcome of a significance test. Winner is nil when the
// result is inconclusive.
type Verdict struct {
	Winner     *Arm    `json:"winner"`
	Confidence float64 `json:"confidence"`
}
