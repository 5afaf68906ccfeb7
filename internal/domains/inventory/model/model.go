package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warehouse represents the database entity for the warehouses table
type Warehouse struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	LocationCode string    `db:"location_code"` // e.g. MUM-01
}

// Bin is a physical, uniquely-coded storage location within a warehouse
type Bin struct {
	ID            uuid.UUID `db:"id"`
	BinCode       string    `db:"bin_code"` // e.g. A-01-01
	IsColdStorage bool      `db:"is_cold_storage"`
	WarehouseID   uuid.UUID `db:"warehouse_id"`
}

// Batch is a manufactured lot. Immutable once created: a later receipt with
// the same batch_number must match product/expiry/mfg or is rejected.
type Batch struct {
	ID          uuid.UUID       `db:"id"`
	BatchNumber string          `db:"batch_number"` // globally unique, the recall key
	ProductID   uuid.UUID       `db:"product_id"`
	ExpiryDate  time.Time       `db:"expiry_date"`
	MfgDate     time.Time       `db:"mfg_date"`
	MRP         decimal.Decimal `db:"mrp"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Stock is one bin assignment: (batch, bin) -> quantity >= 0.
// Rows are never deleted; exhausted assignments stay at zero for trace history.
type Stock struct {
	ID       uuid.UUID `db:"id"`
	BatchID  uuid.UUID `db:"batch_id"`
	BinID    uuid.UUID `db:"bin_id"`
	Quantity int       `db:"quantity"`
}

// QuarantineRecord blocks a whole batch from allocation, across every bin,
// no matter which bin tripped the breach. One record per batch; re-ingesting
// telemetry for an already-quarantined batch creates nothing.
type QuarantineRecord struct {
	ID          uuid.UUID `db:"id"`
	BatchID     uuid.UUID `db:"batch_id"`
	BinCode     string    `db:"bin_code"` // the bin whose reading tripped it
	Reason      string    `db:"reason"`
	Temperature float64   `db:"temperature"`
	CreatedAt   time.Time `db:"created_at"`
}

// BatchHolds is the allocation-blocking state of a batch.
type BatchHolds struct {
	Quarantined bool
	Recalled    bool
}

// StockView is one live-stock row joined with product identity.
type StockView struct {
	BinCode       string
	ProductName   string
	SKU           string
	BatchNumber   string
	ExpiryDate    time.Time
	Quantity      int
	IsColdChain   bool
	IsQuarantined bool
}

// BinStock is one stock row in a bin with the product facts telemetry needs.
type BinStock struct {
	StockID           uuid.UUID
	BatchID           uuid.UUID
	BatchNumber       string
	ProductID         uuid.UUID
	ProductName       string
	RequiresColdChain bool
	MaxTemp           *float64
	Quantity          int
	Quarantined       bool
	Recalled          bool
}

// MaxAllowedTemp resolves the effective cold-chain ceiling, falling back to
// the engine default when master data carries no explicit limit.
func (bs BinStock) MaxAllowedTemp(defaultMaxTempC float64) float64 {
	if bs.MaxTemp != nil {
		return *bs.MaxTemp
	}
	return defaultMaxTempC
}
