package service

import (
	"context"

	"pharmacore-backend/internal/domains/compliance/model"
)

type ServiceInterface interface {
	// TraceBatch answers "where is this batch now, and who bought it":
	// batch identity, bins still holding quantity, and the dispatch trail
	// newest-first. Read-only.
	TraceBatch(ctx context.Context, batchNumber string) (*model.TraceResponse, error)

	// InitiateRecall terminally recalls a batch and notifies every distinct
	// customer in its dispatch trail exactly once. A repeat call returns
	// ErrAlreadyRecalled and sends nothing.
	InitiateRecall(ctx context.Context, batchNumber string) (*model.RecallResponse, error)
}
