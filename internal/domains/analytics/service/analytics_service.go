package service

import (
	"context"
	"fmt"
	"time"

	"pharmacore-backend/internal/config"
	"pharmacore-backend/internal/domains/analytics/model"
	"pharmacore-backend/internal/domains/analytics/repository"
	"pharmacore-backend/pkg/cache"
	"pharmacore-backend/pkg/logger"
)

const (
	// CacheKeyInsights holds the computed insights feed.
	CacheKeyInsights = "analytics:insights"

	// CachePatternAnalytics matches every derived analytics key. Ledger
	// writers (receipts, allocations, quarantines, recalls) invalidate the
	// whole namespace rather than tracking individual keys.
	CachePatternAnalytics = "analytics:*"

	insightsCacheTTL = time.Minute
)

// deadStockUnits is the overstock threshold for the dead-stock finding.
const deadStockUnits = 500

// salesWindowDays spreads lifetime sales over a flat window to estimate a
// daily burn rate. Crude, but good enough to flag imminent stockouts.
const salesWindowDays = 30

type AnalyticsService struct {
	repo   repository.RepositoryInterface
	cache  cache.Cache
	engine config.EngineConfig
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(repo repository.RepositoryInterface, c cache.Cache, engine config.EngineConfig) ServiceInterface {
	return &AnalyticsService{
		repo:   repo,
		cache:  c,
		engine: engine,
		now:    time.Now,
	}
}

// GetInsights implements Service.GetInsights.
// The feed is cached under the analytics namespace; ledger writers drop the
// namespace on every mutation, so the TTL only bounds staleness between
// unrelated reads.
func (s *AnalyticsService) GetInsights(ctx context.Context) ([]model.Insight, error) {
	if s.cache != nil {
		var cached []model.Insight
		found, err := s.cache.Get(ctx, CacheKeyInsights, &cached)
		if err != nil {
			logger.Warn("insights cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if found {
			return cached, nil
		}
	}

	insights := []model.Insight{}
	now := s.now()

	horizon := now.AddDate(0, 0, s.engine.WarningExpiryDays)
	expiring, err := s.repo.ExpiringBatches(ctx, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring batches: %w", err)
	}

	for _, b := range expiring {
		daysLeft := int(b.ExpiryDate.Sub(now).Hours() / 24)
		severity := model.InsightWarning
		if daysLeft < s.engine.CriticalExpiryDays {
			severity = model.InsightCritical
		}

		insights = append(insights, model.Insight{
			Type:    severity,
			Title:   "Expiry Risk",
			Message: fmt.Sprintf("%s batch %s expires in %d days.", b.ProductName, b.BatchNumber, daysLeft),
			Metric:  fmt.Sprintf("%d Units at risk", b.Quantity),
		})
	}

	summaries, err := s.repo.ProductSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product summaries: %w", err)
	}

	for _, p := range summaries {
		dailyDemand := float64(p.TotalSold) / salesWindowDays

		switch {
		case dailyDemand > 0:
			daysLeft := float64(p.TotalStock) / dailyDemand
			if daysLeft < 7 {
				insights = append(insights, model.Insight{
					Type:    model.InsightCritical,
					Title:   "Stockout Risk",
					Message: fmt.Sprintf("%s will run out in %d days.", p.Name, int(daysLeft)),
					Metric:  fmt.Sprintf("%d Units left", p.TotalStock),
				})
			}
		case p.TotalStock < s.engine.LowStockUnits:
			insights = append(insights, model.Insight{
				Type:    model.InsightWarning,
				Title:   "Low Inventory",
				Message: fmt.Sprintf("%s is below safety stock levels.", p.Name),
				Metric:  fmt.Sprintf("%d Units", p.TotalStock),
			})
		}

		if p.TotalStock > deadStockUnits && p.TotalSold == 0 {
			insights = append(insights, model.Insight{
				Type:    model.InsightInfo,
				Title:   "Dead Stock",
				Message: fmt.Sprintf("%s is not moving. Consider a discount.", p.Name),
				Metric:  "Overstocked",
			})
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKeyInsights, insights, insightsCacheTTL); err != nil {
			logger.Warn("insights cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return insights, nil
}
