package domain

import (
	"time"

	"gorm.io/datatypes"
)

type BundleStatus string

const (
	BundleStatusDraft    BundleStatus = "DRAFT"
	BundleStatusActive   BundleStatus = "ACTIVE"
	BundleStatusArchived BundleStatus = "ARCHIVED"
)

type BundleSource string

const (
	BundleSourceManual BundleSource = "MANUAL"
	BundleSourceAuto   BundleSource = "AUTO"
)

type Bundle struct {
	ID                    string       `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	ShopID                uint64       `gorm:"column:shop_id;index;not null" json:"shop_id"`
	Name                  string       `gorm:"column:name;type:text" json:"name"`
	Status                BundleStatus `gorm:"column:status;type:text;not null" json:"status"`
	Source                BundleSource `gorm:"column:source;type:text;not null" json:"source"`
	DiscountPct           float64      `gorm:"column:discount_pct;type:numeric" json:"discount_pct"`
	EffectivePrice        float64      `gorm:"column:effective_price;type:numeric" json:"effective_price"`
	ContributionMargin    float64      `gorm:"column:contribution_margin;type:numeric" json:"contribution_margin"`
	ContributionMarginPct float64      `gorm:"column:contribution_margin_pct;type:numeric" json:"contribution_margin_pct"`
	Score                 float64      `gorm:"column:score;type:numeric" json:"score,omitempty"`
	Items                 []BundleItem `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt             time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Bundle) TableName() string {
	return "bundles"
}

type BundleItem struct {
	ID           uint64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	BundleID     string                       `gorm:"column:bundle_id;type:uuid;index;not null" json:"bundle_id"`
	ProductID    uint64                       `gorm:"column:product_id;not null" json:"product_id"`
	Quantity     int                          `gorm:"column:quantity;not null;default:1" json:"quantity"`
	IsAnchor     bool                         `gorm:"column:is_anchor" json:"is_anchor"`
	IsDeadStock  bool                         `gorm:"column:is_dead_stock" json:"is_dead_stock"`
	CostSnapshot datatypes.JSONType[CostItem] `gorm:"column:cost_snapshot;type:jsonb" json:"cost_snapshot"`
}

func (BundleItem) TableName() string {
	return "bundle_items"
}

// CandidateItem is the per-product snapshot carried by a BundleCandidate.
type CandidateItem struct {
	ProductID       uint64  `json:"product_id"`
	Title           string  `json:"title"`
	Price           float64 `json:"price"`
	Cogs            float64 `json:"cogs"`
	ShippingCost    float64 `json:"shipping_cost"`
	AdditionalCosts float64 `json:"additional_costs"`
	Quantity        int     `json:"quantity"`
	IsAnchor        bool    `json:"is_anchor"`
	IsDeadStock     bool    `json:"is_dead_stock"`
}

func (i CandidateItem) CostItem() CostItem {
	return CostItem{
		Price:           i.Price,
		Cogs:            i.Cogs,
		ShippingCost:    i.ShippingCost,
		AdditionalCosts: i.AdditionalCosts,
		Quantity:        i.Quantity,
	}
}

// BundleCandidate is a proposed, not yet persisted, bundle.
type BundleCandidate struct {
	AnchorID     uint64          `json:"anchor_id"`
	CompanionIDs []uint64        `json:"companion_ids"`
	Name         string          `json:"name"`
	DiscountPct  float64         `json:"discount_pct"`
	Score        float64         `json:"score"`
	Margin       MarginResult    `json:"margin"`
	Items        []CandidateItem `json:"items"`
}
