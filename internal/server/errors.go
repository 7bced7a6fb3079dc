package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	blobdomain "github.com/smallbiznis/stockroom/internal/blob/domain"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/internal/chunk"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	"github.com/smallbiznis/stockroom/internal/pricing"
	"gorm.io/gorm"
)

type fieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Errors  []fieldError   `json:"errors,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	var submitErr *orderdomain.ValidationError
	if errors.As(err, &submitErr) {
		fields := make([]fieldError, 0, len(submitErr.Fields))
		for _, f := range submitErr.Fields {
			fields = append(fields, fieldError{
				Field:   f,
				Code:    "required",
				Message: f + " is required",
			})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fields,
		}
	}

	var stockErr *pricing.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusConflict, errorPayload{
			Type:    "insufficient_stock",
			Message: "insufficient stock",
			Details: map[string]any{
				"product_id": stockErr.ProductID.String(),
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		}
	}

	var transitionErr *orderdomain.TransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: "invalid status transition",
			Details: map[string]any{
				"from": transitionErr.From,
				"to":   transitionErr.To,
			},
		}
	}

	var missingErr *chunk.MissingChunkError
	if errors.As(err, &missingErr) {
		return http.StatusInternalServerError, errorPayload{
			Type:    "missing_chunk",
			Message: "stored object is incomplete",
			Details: map[string]any{
				"index": missingErr.Index,
			},
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []fieldError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    err.Error(),
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCatalogValidationError(err),
		isOrderValidationError(err),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrNoApplicableTier),
		errors.Is(err, chunk.ErrInvalidEncoding):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrSKUExists),
		errors.Is(err, orderdomain.ErrNotEditable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrProductNotFound),
		errors.Is(err, blobdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
