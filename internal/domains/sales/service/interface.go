package service

import (
	"context"

	"pharmacore-backend/internal/domains/sales/model"
)

type ServiceInterface interface {
	// CreateOrder allocates every line of the order from eligible stock,
	// earliest expiry first, and commits atomically. Either every line is
	// fully satisfied or nothing is written.
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.OrderResponse, error)
}
