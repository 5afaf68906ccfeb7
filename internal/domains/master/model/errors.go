package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrProductNotFound is returned when a referenced product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrManufacturerNotFound is returned when a referenced manufacturer does not exist
	ErrManufacturerNotFound = errors.New("manufacturer not found")
)

// NewProductNotFoundError creates a detailed not found error
func NewProductNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrProductNotFound, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrManufacturerNotFound)
}
