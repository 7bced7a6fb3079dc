package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	AdjustStock(ctx context.Context, id string, delta int64) (*Response, error)
}

type ListRequest struct {
	PageToken string
	PageSize  int32
}

type ListResponse struct {
	pagination.PageInfo
	Products []Response `json:"products"`
}

type CreateRequest struct {
	SKU                  string         `json:"sku"`
	Name                 string         `json:"name"`
	Description          *string        `json:"description"`
	Unit                 string         `json:"unit"`
	Stock                int64          `json:"stock"`
	RetailAmountCents    int64          `json:"retail_amount_cents"`
	WholesaleAmountCents *int64         `json:"wholesale_amount_cents"`
	WholesaleMinQty      *int64         `json:"wholesale_min_qty"`
	Metadata             map[string]any `json:"metadata"`
}

type TierResponse struct {
	Kind            string `json:"kind"`
	MinQuantity     int64  `json:"min_quantity"`
	UnitAmountCents int64  `json:"unit_amount_cents"`
}

type Response struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Unit        string         `json:"unit"`
	Stock       int64          `json:"stock"`
	Active      bool           `json:"active"`
	Tiers       []TierResponse `json:"tiers"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidSKU         = errors.New("invalid_sku")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidStock       = errors.New("invalid_stock")
	ErrInvalidRetailPrice = errors.New("invalid_retail_price")
	ErrInvalidWholesale   = errors.New("invalid_wholesale_tier")
	ErrSKUExists          = errors.New("sku_exists")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)
