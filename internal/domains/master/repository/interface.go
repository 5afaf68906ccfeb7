package repository

import (
	"context"

	"github.com/google/uuid"

	"pharmacore-backend/internal/domains/master/model"
)

// RepositoryInterface is the read-side catalog contract. Master data CRUD is
// owned by the external master-data service writing the same tables.
type RepositoryInterface interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListManufacturers(ctx context.Context) ([]model.Manufacturer, error)
}
