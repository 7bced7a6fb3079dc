package domain

import (
	"context"
	"io"
	"time"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)

	AddItem(ctx context.Context, orderID, productID string, quantityDelta int64) (*Response, error)
	RemoveItem(ctx context.Context, orderID string, index int) (*Response, error)
	SetItemQuantity(ctx context.Context, orderID string, index int, quantity int64) (*Response, error)
	SetDiscount(ctx context.Context, orderID string, discountCents int64) (*Response, error)
	SetShipping(ctx context.Context, orderID string, shippingCents int64) (*Response, error)

	Submit(ctx context.Context, orderID string) (*Response, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*Response, error)
	Receipt(ctx context.Context, orderID string) (io.Reader, error)
}

type ListRequest struct {
	PageToken string
	PageSize  int32
	Status    string
}

type ListFilter struct {
	Status string
}

type ListResponse struct {
	pagination.PageInfo
	Orders []Response `json:"orders"`
}

type CreateRequest struct {
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerAddress *string        `json:"customer_address"`
	PaymentMethod   string         `json:"payment_method"`
	Metadata        map[string]any `json:"metadata"`
}

type ItemResponse struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	Quantity        int64  `json:"quantity"`
	UnitAmountCents int64  `json:"unit_amount_cents"`
	LineTotalCents  int64  `json:"line_total_cents"`
	Wholesale       bool   `json:"wholesale"`
}

type Response struct {
	ID              string         `json:"id"`
	Number          string         `json:"number"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method"`
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerAddress *string        `json:"customer_address,omitempty"`
	Items           []ItemResponse `json:"items"`
	DiscountCents   int64          `json:"discount_cents"`
	ShippingCents   int64          `json:"shipping_cents"`
	SubtotalCents   int64          `json:"subtotal_cents"`
	TaxCents        int64          `json:"tax_cents"`
	TotalCents      int64          `json:"total_cents"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
