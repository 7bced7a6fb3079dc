package pdf

import (
	"bytes"
	"context"
	"io"
	"time"
)

// Provider renders order documents. Receipt generation happens inline on the
// request path, so implementations should stay allocation-light.
type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type ReceiptData struct {
	Number        string
	IssuedAt      time.Time
	CustomerName  string
	CustomerPhone string

	Items []ReceiptItem

	DiscountCents int64
	ShippingCents int64
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

type ReceiptItem struct {
	Name            string
	Quantity        int64
	UnitAmountCents int64
	LineTotalCents  int64
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return bytes.NewReader(nil), nil
}
