package repository

import (
	"context"

	"github.com/google/uuid"

	"pharmacore-backend/internal/domains/compliance/model"
)

type RepositoryInterface interface {
	// GetBatchFacts resolves a batch number to the batch and its product.
	// Returns ErrBatchNotFound for unknown numbers.
	GetBatchFacts(ctx context.Context, batchNumber string) (*model.BatchFacts, error)

	// CurrentLocations returns the bins still holding the batch (quantity > 0),
	// ordered by bin_code.
	CurrentLocations(ctx context.Context, batchID uuid.UUID) ([]model.Location, error)

	// CreateRecall inserts the recall record. A second insert for the same
	// batch hits the unique constraint and returns ErrAlreadyRecalled.
	CreateRecall(ctx context.Context, record *model.RecallRecord) error
}
