// Package cart applies line-item mutations to an in-memory order. Every
// operation either fully applies and re-derives the order totals, or fails
// leaving the order untouched. Callers hand in a freshly loaded product;
// the cart itself never performs I/O.
package cart

import (
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	"github.com/smallbiznis/stockroom/internal/pricing"
)

type Cart struct {
	engine *pricing.Engine
	order  *orderdomain.Order
}

func New(engine *pricing.Engine, order *orderdomain.Order) *Cart {
	return &Cart{engine: engine, order: order}
}

// AddOrUpdateItem merges delta into an existing line for the product, or
// appends a new line. Only the touched line is repriced: an existing line
// that crosses the wholesale threshold through the merge gets the wholesale
// price for its whole quantity, while other lines keep their locked prices.
func (c *Cart) AddOrUpdateItem(product *catalogdomain.Product, delta int64) error {
	if !c.order.Editable() {
		return orderdomain.ErrNotEditable
	}

	quantity := delta
	idx := c.order.FindItemByProduct(product.ID)
	if idx >= 0 {
		quantity += c.order.Items[idx].Quantity
	}

	line, err := c.engine.RecomputeLine(product, quantity)
	if err != nil {
		return err
	}

	if idx >= 0 {
		c.applyLine(&c.order.Items[idx], line)
	} else {
		item := orderdomain.LineItem{
			OrderID:   c.order.ID,
			ProductID: product.ID,
			Position:  len(c.order.Items),
		}
		c.applyLine(&item, line)
		c.order.Items = append(c.order.Items, item)
	}

	c.recomputeTotals()
	return nil
}

// RemoveItem deletes the line at index and re-derives totals.
func (c *Cart) RemoveItem(index int) error {
	if !c.order.Editable() {
		return orderdomain.ErrNotEditable
	}
	if index < 0 || index >= len(c.order.Items) {
		return orderdomain.ErrIndexOutOfRange
	}

	c.order.Items = append(c.order.Items[:index], c.order.Items[index+1:]...)
	for i := range c.order.Items {
		c.order.Items[i].Position = i
	}

	c.recomputeTotals()
	return nil
}

// SetItemQuantity reprices the line at index to an absolute quantity.
// Quantities below 1 are rejected; removal is RemoveItem, never a zero
// quantity.
func (c *Cart) SetItemQuantity(index int, product *catalogdomain.Product, quantity int64) error {
	if !c.order.Editable() {
		return orderdomain.ErrNotEditable
	}
	if index < 0 || index >= len(c.order.Items) {
		return orderdomain.ErrIndexOutOfRange
	}
	if quantity < 1 {
		return pricing.ErrInvalidQuantity
	}

	line, err := c.engine.RecomputeLine(product, quantity)
	if err != nil {
		return err
	}

	c.applyLine(&c.order.Items[index], line)
	c.recomputeTotals()
	return nil
}

func (c *Cart) SetDiscount(discountCents int64) error {
	if !c.order.Editable() {
		return orderdomain.ErrNotEditable
	}
	if discountCents < 0 {
		return orderdomain.ErrInvalidDiscount
	}

	c.order.DiscountCents = discountCents
	c.recomputeTotals()
	return nil
}

func (c *Cart) SetShipping(shippingCents int64) error {
	if !c.order.Editable() {
		return orderdomain.ErrNotEditable
	}
	if shippingCents < 0 {
		return orderdomain.ErrInvalidShipping
	}

	c.order.ShippingCents = shippingCents
	c.recomputeTotals()
	return nil
}

// Transition moves the order along the status lifecycle.
func (c *Cart) Transition(next string) error {
	if !orderdomain.ValidStatus(next) {
		return orderdomain.ErrInvalidStatus
	}
	if !orderdomain.CanTransition(c.order.Status, next) {
		return &orderdomain.TransitionError{From: c.order.Status, To: next}
	}

	c.order.Status = next
	return nil
}

func (c *Cart) applyLine(item *orderdomain.LineItem, line *pricing.Line) {
	item.Name = line.Name
	item.Quantity = line.Quantity
	item.UnitAmountCents = line.UnitAmountCents
	item.LineTotalCents = line.LineTotalCents
	item.StockSnapshot = line.StockSnapshot
	item.Wholesale = line.Wholesale
}

// recomputeTotals is the single funnel for the order's derived fields; all
// mutation paths end here so the four totals can never drift apart.
func (c *Cart) recomputeTotals() {
	totals := c.engine.OrderTotals(c.order.LineTotals(), c.order.DiscountCents, c.order.ShippingCents)
	c.order.SubtotalCents = totals.SubtotalCents
	c.order.TaxCents = totals.TaxCents
	c.order.TotalCents = totals.TotalCents
}
