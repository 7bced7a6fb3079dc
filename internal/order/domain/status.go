package domain

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// transitions is the order lifecycle. Nothing ever moves back to pending.
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCompleted, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusCompleted, StatusRefunded},
}

// CanTransition reports whether an order may move from one status to the
// next. Transitions are always explicit caller operations, never inferred
// from item or payment changes.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether the value names a known order status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// Editable reports whether line items, discount and shipping may still be
// changed. Once submitted, the cart is frozen.
func (o *Order) Editable() bool {
	return o.Status == StatusPending
}
