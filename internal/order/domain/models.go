package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Order struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	Number          string            `json:"number" gorm:"type:text;not null;uniqueIndex"`
	Status          string            `json:"status" gorm:"type:text;not null"`
	PaymentStatus   string            `json:"payment_status" gorm:"type:text;not null"`
	PaymentMethod   string            `json:"payment_method" gorm:"type:text;not null;default:''"`
	CustomerName    string            `json:"customer_name" gorm:"type:text;not null;default:''"`
	CustomerPhone   string            `json:"customer_phone" gorm:"type:text;not null;default:''"`
	CustomerAddress *string           `json:"customer_address,omitempty" gorm:"type:text"`
	DiscountCents   int64             `json:"discount_cents" gorm:"not null;default:0"`
	ShippingCents   int64             `json:"shipping_cents" gorm:"not null;default:0"`
	SubtotalCents   int64             `json:"subtotal_cents" gorm:"not null;default:0"`
	TaxCents        int64             `json:"tax_cents" gorm:"not null;default:0"`
	TotalCents      int64             `json:"total_cents" gorm:"not null;default:0"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items []LineItem `json:"items" gorm:"-"`
}

func (Order) TableName() string { return "orders" }

// LineItem belongs to exactly one order. Name, unit price, the wholesale
// flag and the stock snapshot are captured at the moment of the edit; they
// are derived values, never set directly by callers.
type LineItem struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderID         snowflake.ID `json:"order_id" gorm:"column:order_id;not null;index"`
	ProductID       snowflake.ID `json:"product_id" gorm:"column:product_id;not null;index"`
	Name            string       `json:"name" gorm:"type:text;not null"`
	Quantity        int64        `json:"quantity" gorm:"not null"`
	UnitAmountCents int64        `json:"unit_amount_cents" gorm:"not null"`
	LineTotalCents  int64        `json:"line_total_cents" gorm:"not null"`
	StockSnapshot   int64        `json:"stock_snapshot" gorm:"not null;default:0"`
	Wholesale       bool         `json:"wholesale" gorm:"not null;default:false"`
	Position        int          `json:"position" gorm:"not null;default:0"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "order_items" }

// FindItemByProduct returns the index of the line holding productID, or -1.
// A product appears on at most one line; adding it again merges quantities.
func (o *Order) FindItemByProduct(productID snowflake.ID) int {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// LineTotals collects the per-line totals in item order.
func (o *Order) LineTotals() []int64 {
	totals := make([]int64, 0, len(o.Items))
	for i := range o.Items {
		totals = append(totals, o.Items[i].LineTotalCents)
	}
	return totals
}
