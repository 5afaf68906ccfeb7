package model

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	// ErrInsufficientStock is returned when an order line cannot be fully
	// satisfied from eligible stock. The whole order is rejected; partial
	// shipment is disallowed by design.
	ErrInsufficientStock = errors.New("insufficient eligible stock")

	// ErrStaleAllocation is returned when commit-time re-validation finds the
	// planned quantities no longer available. With per-product locking this
	// only fires when another writer (e.g. a second instance) raced us.
	ErrStaleAllocation = errors.New("allocation plan is stale")
)

// NewInsufficientStockError creates an error with stock details
func NewInsufficientStockError(productID uuid.UUID, requested, available int) error {
	return fmt.Errorf("%w: product_id=%s, requested=%d, available=%d",
		ErrInsufficientStock, productID, requested, available)
}

// IsInsufficientStockError checks if error is insufficient stock error
func IsInsufficientStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrStaleAllocation)
}

// IsValidationError checks if error is a field-level validation result
func IsValidationError(err error) bool {
	var fieldErrs validation.Errors
	return errors.As(err, &fieldErrs)
}
