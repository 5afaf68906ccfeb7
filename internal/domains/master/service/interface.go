package service

import (
	"context"

	"pharmacore-backend/internal/domains/master/model"
)

type ServiceInterface interface {
	ListProducts(ctx context.Context) ([]model.ProductResponse, error)
	ListManufacturers(ctx context.Context) ([]model.ManufacturerDetailResponse, error)
}
