package repository

import (
	"context"
	"time"

	"pharmacore-backend/internal/domains/analytics/model"
)

type RepositoryInterface interface {
	// ExpiringBatches returns batches with eligible stock expiring before the
	// horizon, soonest first.
	ExpiringBatches(ctx context.Context, before time.Time) ([]model.ExpiringBatch, error)

	// ProductSummaries returns every product with its eligible stock total and
	// lifetime units sold.
	ProductSummaries(ctx context.Context) ([]model.ProductSummary, error)
}
