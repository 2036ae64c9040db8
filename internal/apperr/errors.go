package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthenticated signals a missing or invalid caller identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrDuplicatePayment signals that a gateway payment id has already been
// processed by a previous verify call.
var ErrDuplicatePayment = errors.New("payment already processed")

// ValidationError describes a client input error on a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StockConflictError signals that a checkout lost the inventory race. The
// order row exists and has been flagged; OrderID lets the client reference it.
type StockConflictError struct {
	OrderID   string
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (order %s flagged)", e.ProductID, e.OrderID)
}

// IsValidation reports whether err is a client input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStockConflict reports whether err is a lost inventory race, returning the
// flagged order id when it is.
func IsStockConflict(err error) (string, bool) {
	var sc *StockConflictError
	if errors.As(err, &sc) {
		return sc.OrderID, true
	}
	return "", false
}
