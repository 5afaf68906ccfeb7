package model

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ===================================
// DOMAIN ERRORS
// ===================================

var (
	// ErrInvalidQuantity is returned when a receipt quantity is not positive
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrInvalidExpiry is returned when expiry_date is not after mfg_date
	ErrInvalidExpiry = errors.New("expiry date must be after manufacturing date")

	// ErrInvalidTemperature is returned for telemetry readings outside the sensor's physical range
	ErrInvalidTemperature = errors.New("temperature reading outside plausible range")

	// ErrBinNotFound is returned when a bin code is unknown
	ErrBinNotFound = errors.New("bin not found")

	// ErrBatchNotFound is returned when a batch number was never received
	ErrBatchNotFound = errors.New("batch not found")

	// ErrBatchConflict is returned when a receipt disagrees with the existing batch identity
	ErrBatchConflict = errors.New("receipt conflicts with existing batch identity")

	// ErrBatchOnHold is returned when receiving into a quarantined or recalled batch
	ErrBatchOnHold = errors.New("batch is quarantined or recalled")

	// ErrBinAlreadyExists is returned when creating a duplicate bin code
	ErrBinAlreadyExists = errors.New("bin code already exists")

	// ErrWarehouseAlreadyExists is returned when creating a duplicate warehouse
	ErrWarehouseAlreadyExists = errors.New("warehouse already exists")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewBinNotFoundError creates a detailed not found error
func NewBinNotFoundError(binCode string) error {
	return fmt.Errorf("%w: bin_code=%s", ErrBinNotFound, binCode)
}

// NewBatchNotFoundError creates a detailed not found error
func NewBatchNotFoundError(batchNumber string) error {
	return fmt.Errorf("%w: batch_number=%s", ErrBatchNotFound, batchNumber)
}

// NewBatchConflictError creates an error naming the mismatched field
func NewBatchConflictError(batchNumber, field string) error {
	return fmt.Errorf("%w: batch_number=%s, mismatch=%s", ErrBatchConflict, batchNumber, field)
}

// NewBatchOnHoldError creates an error naming the blocking state
func NewBatchOnHoldError(batchNumber, hold string) error {
	return fmt.Errorf("%w: batch_number=%s, hold=%s", ErrBatchOnHold, batchNumber, hold)
}

// IsValidationError checks if error is malformed/out-of-range input,
// either a domain sentinel or a field-level validation result.
func IsValidationError(err error) bool {
	var fieldErrs validation.Errors
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidExpiry) ||
		errors.Is(err, ErrInvalidTemperature) ||
		errors.As(err, &fieldErrs)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBinNotFound) || errors.Is(err, ErrBatchNotFound)
}
