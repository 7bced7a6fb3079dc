package pricing

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
)

var (
	// ErrInvalidQuantity rejects quantities below 1. Removing a line is an
	// explicit operation, never a zero-quantity update.
	ErrInvalidQuantity = errors.New("invalid_quantity")

	// ErrNoApplicableTier means the product violates the convention that a
	// retail tier with MinQuantity=1 always exists.
	ErrNoApplicableTier = errors.New("no_applicable_price_tier")
)

// InsufficientStockError reports a requested quantity above the product's
// live stock. The engine never clamps; the caller decides how to react.
type InsufficientStockError struct {
	ProductID snowflake.ID
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient_stock: product %s requested %d available %d",
		e.ProductID, e.Requested, e.Available)
}

// Quote is the tier-resolved unit price for a quantity.
type Quote struct {
	UnitAmountCents int64
	Wholesale       bool
}

// Line is a fully repriced line item. Unit price and the wholesale flag are
// locked in at the moment of the edit; later tier changes do not reprice it.
type Line struct {
	ProductID       snowflake.ID
	Name            string
	Quantity        int64
	UnitAmountCents int64
	LineTotalCents  int64
	StockSnapshot   int64
	Wholesale       bool
}

// Totals are the order-level aggregates. They are only ever written as a
// unit; no field is individually settable.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// Engine computes line and order totals. It is pure and reentrant; the tax
// rate is fixed at construction.
type Engine struct {
	taxRate decimal.Decimal
}

func New(taxRate decimal.Decimal) *Engine {
	return &Engine{taxRate: taxRate}
}

// ResolveUnitPrice selects the tier with the highest MinQuantity that is
// still <= quantity. With the conventional retail(1)/wholesale(N) layout
// this yields the wholesale price exactly when quantity >= N.
func (e *Engine) ResolveUnitPrice(product *catalogdomain.Product, quantity int64) (Quote, error) {
	if quantity < 1 {
		return Quote{}, ErrInvalidQuantity
	}

	var (
		best    *catalogdomain.PriceTier
		bestMin int64
	)
	for i := range product.Tiers {
		tier := &product.Tiers[i]
		if tier.MinQuantity > quantity {
			continue
		}
		if best == nil || tier.MinQuantity > bestMin {
			best = tier
			bestMin = tier.MinQuantity
		}
	}
	if best == nil {
		return Quote{}, ErrNoApplicableTier
	}

	return Quote{
		UnitAmountCents: best.UnitAmountCents,
		Wholesale:       best.Kind == catalogdomain.TierKindWholesale,
	}, nil
}

// RecomputeLine builds a repriced line for the desired quantity. It guards
// against overselling when the product tracks stock but leaves the clamp
// decision to the caller.
func (e *Engine) RecomputeLine(product *catalogdomain.Product, quantity int64) (*Line, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if product.Stock > 0 && quantity > product.Stock {
		return nil, &InsufficientStockError{
			ProductID: product.ID,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	quote, err := e.ResolveUnitPrice(product, quantity)
	if err != nil {
		return nil, err
	}

	return &Line{
		ProductID:       product.ID,
		Name:            product.Name,
		Quantity:        quantity,
		UnitAmountCents: quote.UnitAmountCents,
		LineTotalCents:  quantity * quote.UnitAmountCents,
		StockSnapshot:   product.Stock,
		Wholesale:       quote.Wholesale,
	}, nil
}

// OrderTotals recomputes subtotal, tax and total from line totals plus
// discount and shipping. Tax is rounded half-up to the cent. A discount
// larger than subtotal+tax+shipping produces a negative total on purpose;
// surfacing that is the caller's problem.
func (e *Engine) OrderTotals(lineTotalCents []int64, discountCents, shippingCents int64) Totals {
	var subtotal int64
	for _, cents := range lineTotalCents {
		subtotal += cents
	}

	tax := decimal.NewFromInt(subtotal).Mul(e.taxRate).Round(0).IntPart()

	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax + shippingCents - discountCents,
	}
}
