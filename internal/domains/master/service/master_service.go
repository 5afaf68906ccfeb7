package service

import (
	"context"
	"fmt"
	"time"

	"pharmacore-backend/internal/domains/master/model"
	"pharmacore-backend/internal/domains/master/repository"
	"pharmacore-backend/pkg/cache"
	"pharmacore-backend/pkg/logger"
)

const (
	cacheKeyProducts = "catalog:products"
	catalogCacheTTL  = 5 * time.Minute
)

type MasterService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

// NewService creates a new catalog read service
func NewService(repo repository.RepositoryInterface, c cache.Cache) ServiceInterface {
	return &MasterService{
		repo:  repo,
		cache: c,
	}
}

// ListProducts implements Service.ListProducts with a read-through cache.
// Master data changes rarely and is written by an external service, so a
// short TTL is the consistency model here.
func (s *MasterService) ListProducts(ctx context.Context) ([]model.ProductResponse, error) {
	if s.cache != nil {
		var cached []model.ProductResponse
		found, err := s.cache.Get(ctx, cacheKeyProducts, &cached)
		if err != nil {
			logger.Warn("catalog cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if found {
			return cached, nil
		}
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	resp := model.ToProductResponseList(products)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyProducts, resp, catalogCacheTTL); err != nil {
			logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return resp, nil
}

// ListManufacturers implements Service.ListManufacturers
func (s *MasterService) ListManufacturers(ctx context.Context) ([]model.ManufacturerDetailResponse, error) {
	manufacturers, err := s.repo.ListManufacturers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}

	out := make([]model.ManufacturerDetailResponse, 0, len(manufacturers))
	for i := range manufacturers {
		out = append(out, manufacturers[i].ToResponse())
	}
	return out, nil
}
