package repository

import (
	"context"

	"github.com/google/uuid"

	"pharmacore-backend/internal/domains/inventory/model"
)

// RepositoryInterface is the Batch Ledger contract. The ledger is mutated only
// through receipts (AddStock), allocations (owned by the sales repository) and
// quarantines; everything else is a snapshot read.
type RepositoryInterface interface {
	CreateWarehouse(ctx context.Context, warehouse *model.Warehouse) error
	CreateBin(ctx context.Context, bin *model.Bin) error
	GetBinByCode(ctx context.Context, binCode string) (*model.Bin, error)

	GetBatchByNumber(ctx context.Context, batchNumber string) (*model.Batch, error)

	// CreateBatchWithStock inserts a new batch together with its first bin
	// assignment in one transaction and returns the assignment quantity.
	// A failed receipt must not leave a batch row with no stock behind it.
	CreateBatchWithStock(ctx context.Context, batch *model.Batch, binID uuid.UUID, quantity int) (int, error)

	// AddStock increments the (batch, bin) assignment of an existing batch,
	// creating the assignment on first receipt into that bin, and returns
	// the new quantity.
	AddStock(ctx context.Context, batchID, binID uuid.UUID, quantity int) (int, error)

	// BatchHolds reports whether the batch is quarantined and/or recalled.
	BatchHolds(ctx context.Context, batchID uuid.UUID) (*model.BatchHolds, error)

	// LiveStock returns every assignment with quantity > 0 joined with product
	// identity and quarantine state, ordered by bin_code ascending.
	LiveStock(ctx context.Context) ([]model.StockView, error)

	// StockInBin returns the non-empty assignments resident in one bin with
	// the product facts the quarantine engine needs.
	StockInBin(ctx context.Context, binID uuid.UUID) ([]model.BinStock, error)

	// CreateQuarantineRecords inserts batch-wide quarantine records.
	// Batches that already hold a record are left untouched.
	CreateQuarantineRecords(ctx context.Context, records []model.QuarantineRecord) error
}
