package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrProductNotFound = errors.New("product_not_found")
	ErrIndexOutOfRange = errors.New("line_index_out_of_range")
	ErrInvalidDiscount = errors.New("invalid_discount")
	ErrInvalidShipping = errors.New("invalid_shipping")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotEditable     = errors.New("order_not_editable")
)

// ValidationError lists the required fields missing from a submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation_failed: missing " + strings.Join(e.Fields, ", ")
}

// TransitionError reports a status move the lifecycle does not allow.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid_transition: %s -> %s", e.From, e.To)
}
