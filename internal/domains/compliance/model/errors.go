package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBatchNotFound is returned when the traced batch number was never received
	ErrBatchNotFound = errors.New("batch not found")

	// ErrAlreadyRecalled is returned on a repeat recall of the same batch.
	// Recall is terminal; the first call already notified the trail.
	ErrAlreadyRecalled = errors.New("batch already recalled")
)

// NewBatchNotFoundError creates a detailed not found error
func NewBatchNotFoundError(batchNumber string) error {
	return fmt.Errorf("%w: batch_number=%s", ErrBatchNotFound, batchNumber)
}

// NewAlreadyRecalledError creates a detailed conflict error
func NewAlreadyRecalledError(batchNumber string) error {
	return fmt.Errorf("%w: batch_number=%s", ErrAlreadyRecalled, batchNumber)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}
