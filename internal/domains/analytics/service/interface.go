package service

import (
	"context"

	"pharmacore-backend/internal/domains/analytics/model"
)

type ServiceInterface interface {
	// GetInsights builds the operations feed: expiry risks first (soonest
	// expiry leads), then per-product stock health.
	GetInsights(ctx context.Context) ([]model.Insight, error)
}
