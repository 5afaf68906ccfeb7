package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE ORDER REQUEST
// =====================================================

type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Validate validates a single order line
func (item OrderItemRequest) Validate() error {
	return validation.ValidateStruct(&item,
		validation.Field(&item.Quantity, validation.Required, validation.Min(1)),
	)
}

type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1"`
}

// Validate validates CreateOrderRequest
func (req CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.CustomerName, validation.Required, validation.Length(1, 128)),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 100)),
	)
}

// =====================================================
// RESPONSES
// =====================================================

// AllocationResponse is one (batch, bin) drawn from for the order.
type AllocationResponse struct {
	ProductID   string `json:"product_id"`
	BatchNumber string `json:"batch_number"`
	BinCode     string `json:"bin_code"`
	Quantity    int    `json:"quantity"`
	ExpiryDate  string `json:"expiry_date"`
}

type OrderResponse struct {
	ID           string               `json:"id"`
	Status       string               `json:"status"`
	CustomerName string               `json:"customer_name"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	Allocations  []AllocationResponse `json:"allocations"`
	CreatedAt    time.Time            `json:"created_at"`
}
