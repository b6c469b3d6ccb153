package domain

import (
	"time"
)

// CREATE TABLE public.product_costs (
//     id                  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     shop_id             BIGINT NOT NULL,
//     external_product_id TEXT NOT NULL,
//     title               TEXT,
//     status              TEXT NOT NULL DEFAULT 'ACTIVE',
//     price               NUMERIC,
//     cogs                NUMERIC,
//     shipping_cost       NUMERIC,
//     additional_costs    NUMERIC,
//     cost_known          BOOLEAN DEFAULT false,
//     inventory_quantity  INTEGER,
//     avg_daily_sales     NUMERIC,
//     days_without_sale   INTEGER,
//     is_dead_stock       BOOLEAN DEFAULT false,
//     margin_amount       NUMERIC,
//     margin_pct          NUMERIC,
//     created_at          TIMESTAMPTZ DEFAULT NOW(),
//     updated_at          TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (shop_id, external_product_id)
// );

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

type Product struct {
	ID                uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID            uint64        `gorm:"column:shop_id;uniqueIndex:idx_product_costs_shop_external,priority:1" json:"shop_id"`
	ExternalProductID string        `gorm:"column:external_product_id;type:text;uniqueIndex:idx_product_costs_shop_external,priority:2" json:"external_product_id"`
	Title             string        `gorm:"column:title;type:text" json:"title"`
	Status            ProductStatus `gorm:"column:status;type:text;default:ACTIVE" json:"status"`
	Price             float64       `gorm:"column:price;type:numeric" json:"price"`
	Cogs              float64       `gorm:"column:cogs;type:numeric" json:"cogs"`
	ShippingCost      float64       `gorm:"column:shipping_cost;type:numeric" json:"shipping_cost"`
	AdditionalCosts   float64       `gorm:"column:additional_costs;type:numeric" json:"additional_costs"`
	CostKnown         bool          `gorm:"column:cost_known;default:false" json:"cost_known"`
	InventoryQuantity int           `gorm:"column:inventory_quantity" json:"inventory_quantity"`
	AvgDailySales     float64       `gorm:"column:avg_daily_sales;type:numeric" json:"avg_daily_sales"`
	DaysWithoutSale   int           `gorm:"column:days_without_sale" json:"days_without_sale"`
	IsDeadStock       bool          `gorm:"column:is_dead_stock;default:false" json:"is_dead_stock"`
	MarginAmount      float64       `gorm:"column:margin_amount;type:numeric" json:"margin_amount"`
	MarginPct         float64       `gorm:"column:margin_pct;type:numeric" json:"margin_pct"`
	CreatedAt         time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "product_costs"
}

// CostItem returns the product as a single bundle line.
func (p Product) CostItem(quantity int) CostItem {
	return CostItem{
		Price:           p.Price,
		Cogs:            p.Cogs,
		ShippingCost:    p.ShippingCost,
		AdditionalCosts: p.AdditionalCosts,
		Quantity:        quantity,
	}
}

// UnitCost is the variable cost of one unit, excluding payment processing.
func (p Product) UnitCost() float64 {
	return p.Cogs + p.ShippingCost + p.AdditionalCosts
}
