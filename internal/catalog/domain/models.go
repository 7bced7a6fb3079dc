package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TierKindRetail    = "retail"
	TierKindWholesale = "wholesale"
)

type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Slug        string            `json:"slug" gorm:"type:text;not null;index"`
	SKU         string            `json:"sku" gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Unit        string            `json:"unit" gorm:"type:text;not null;default:'pcs'"`
	Stock       int64             `json:"stock" gorm:"not null;default:0"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Tiers []PriceTier `json:"tiers" gorm:"-"`
}

func (Product) TableName() string { return "products" }

// PriceTier is one rung of a product's price ladder. By convention a
// product carries exactly one retail tier with MinQuantity=1 and at most
// one wholesale tier whose MinQuantity is the wholesale threshold.
type PriceTier struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	ProductID       snowflake.ID `json:"product_id" gorm:"column:product_id;not null;index"`
	Kind            string       `json:"kind" gorm:"type:text;not null"`
	MinQuantity     int64        `json:"min_quantity" gorm:"not null"`
	UnitAmountCents int64        `json:"unit_amount_cents" gorm:"not null"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceTier) TableName() string { return "price_tiers" }

// RetailTier returns the retail tier when present.
func (p *Product) RetailTier() *PriceTier {
	for i := range p.Tiers {
		if p.Tiers[i].Kind == TierKindRetail {
			return &p.Tiers[i]
		}
	}
	return nil
}

// WholesaleTier returns the wholesale tier when present.
func (p *Product) WholesaleTier() *PriceTier {
	for i := range p.Tiers {
		if p.Tiers[i].Kind == TierKindWholesale {
			return &p.Tiers[i]
		}
	}
	return nil
}
