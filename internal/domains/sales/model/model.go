package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending    = "PENDING"
	OrderStatusAllocated  = "ALLOCATED" // stock is committed to the order
	OrderStatusDispatched = "DISPATCHED"
)

// SalesOrder represents the database entity for the sales_orders table
type SalesOrder struct {
	ID           uuid.UUID       `db:"id"`
	CustomerName string          `db:"customer_name"`
	Status       string          `db:"status"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	CreatedAt    time.Time       `db:"created_at"`

	Items      []SalesOrderItem
	Dispatches []DispatchRecord
}

// SalesOrderItem is one requested product line
type SalesOrderItem struct {
	ID        uuid.UUID       `db:"id"`
	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"` // opaque pass-through, pricing lives elsewhere
}

// DispatchRecord is one (batch, bin) actually drawn from by a committed
// allocation. Immutable; the recall trail is built from these.
type DispatchRecord struct {
	ID           uuid.UUID `db:"id"`
	OrderID      uuid.UUID `db:"order_id"`
	StockID      uuid.UUID `db:"-"` // assignment the quantity was drawn from; not persisted
	BatchID      uuid.UUID `db:"batch_id"`
	BatchNumber  string    `db:"-"`
	BinID        uuid.UUID `db:"bin_id"`
	BinCode      string    `db:"-"`
	CustomerName string    `db:"customer_name"`
	Quantity     int       `db:"quantity"`
	CreatedAt    time.Time `db:"created_at"`
}

// EligibleStock is one allocation candidate: a non-empty assignment of a
// batch that is neither quarantined nor recalled. The repository returns
// candidates ordered by expiry_date ascending, bin_code ascending.
type EligibleStock struct {
	StockID     uuid.UUID
	BatchID     uuid.UUID
	BatchNumber string
	BinID       uuid.UUID
	BinCode     string
	ExpiryDate  time.Time
	Quantity    int
}
