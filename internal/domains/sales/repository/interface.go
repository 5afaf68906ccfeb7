package repository

import (
	"context"

	"github.com/google/uuid"

	"pharmacore-backend/internal/domains/sales/model"
)

type RepositoryInterface interface {
	// EligibleStock returns the allocation candidates for a product:
	// quantity > 0, batch not quarantined, not recalled; ordered by
	// expiry_date ascending, ties broken by bin_code ascending.
	EligibleStock(ctx context.Context, productID uuid.UUID) ([]model.EligibleStock, error)

	// CommitAllocation persists the order, its lines and its dispatch records
	// and decrements the consumed assignments, all in one transaction.
	// Commit-time re-validation returns ErrStaleAllocation (and rolls back
	// everything) if any decrement would go negative.
	CommitAllocation(ctx context.Context, order *model.SalesOrder) error

	// DispatchTrail returns the full dispatch history of a batch,
	// newest first.
	DispatchTrail(ctx context.Context, batchID uuid.UUID) ([]model.DispatchRecord, error)
}
