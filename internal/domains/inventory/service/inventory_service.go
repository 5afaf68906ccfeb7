package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"pharmacore-backend/internal/config"
	analyticsService "pharmacore-backend/internal/domains/analytics/service"
	"pharmacore-backend/internal/domains/inventory/model"
	"pharmacore-backend/internal/domains/inventory/repository"
	masterRepo "pharmacore-backend/internal/domains/master/repository"
	"pharmacore-backend/pkg/cache"
	"pharmacore-backend/pkg/locking"
	"pharmacore-backend/pkg/logger"
)

const (
	// CacheKeyLiveStock is shared with the sales service, which invalidates
	// it after every allocation commit.
	CacheKeyLiveStock = "inventory:livestock"

	liveStockCacheTTL = 30 * time.Second
)

type InventoryService struct {
	repo    repository.RepositoryInterface
	catalog masterRepo.RepositoryInterface
	guard   *locking.Guard
	cache   cache.Cache
	engine  config.EngineConfig
}

// NewService creates a new inventory service
func NewService(
	repo repository.RepositoryInterface,
	catalog masterRepo.RepositoryInterface,
	guard *locking.Guard,
	c cache.Cache,
	engine config.EngineConfig,
) ServiceInterface {
	return &InventoryService{
		repo:    repo,
		catalog: catalog,
		guard:   guard,
		cache:   c,
		engine:  engine,
	}
}

func (s *InventoryService) lockWait() time.Duration {
	return time.Duration(s.engine.LockWaitMS) * time.Millisecond
}

// ReceiveStock implements Service.ReceiveStock.
// First receipt creates the batch together with its first bin assignment in
// one transaction; later ones assert identity consistency and increment the
// target assignment. New stock is immediately allocatable unless the batch
// is already quarantined or recalled.
func (s *InventoryService) ReceiveStock(ctx context.Context, req model.InboundRequest) (*model.ReceiveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	expiry, mfg, err := req.ParseDates()
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	bin, err := s.repo.GetBinByCode(ctx, req.TargetBinCode)
	if err != nil {
		return nil, err
	}

	// Receipts serialize with allocation and quarantine on the product key so
	// the conservation invariant holds under concurrent writers.
	release, err := s.guard.Acquire(ctx, product.ID.String(), s.lockWait())
	if err != nil {
		return nil, err
	}
	defer release()

	batch, err := s.repo.GetBatchByNumber(ctx, req.BatchNumber)
	switch {
	case err == nil:
		if batch.ProductID != product.ID {
			return nil, model.NewBatchConflictError(req.BatchNumber, "product")
		}
		if !sameDay(batch.ExpiryDate, expiry) {
			return nil, model.NewBatchConflictError(req.BatchNumber, "expiry_date")
		}
		if !sameDay(batch.MfgDate, mfg) {
			return nil, model.NewBatchConflictError(req.BatchNumber, "mfg_date")
		}

		holds, err := s.repo.BatchHolds(ctx, batch.ID)
		if err != nil {
			return nil, err
		}
		if holds.Recalled {
			return nil, model.NewBatchOnHoldError(req.BatchNumber, "recalled")
		}
		if holds.Quarantined {
			return nil, model.NewBatchOnHoldError(req.BatchNumber, "quarantined")
		}

	case model.IsNotFoundError(err):
		batch = &model.Batch{
			ID:          uuid.New(),
			BatchNumber: req.BatchNumber,
			ProductID:   product.ID,
			ExpiryDate:  expiry,
			MfgDate:     mfg,
			MRP:         req.MRP,
			CreatedAt:   time.Now(),
		}
		newQuantity, err := s.repo.CreateBatchWithStock(ctx, batch, bin.ID, req.Quantity)
		if err != nil {
			return nil, err
		}

		s.invalidateStockViews(ctx)

		return &model.ReceiveResponse{
			Status:      "Stock Received",
			BatchNumber: batch.BatchNumber,
			Bin:         bin.BinCode,
			NewQuantity: newQuantity,
		}, nil

	default:
		return nil, err
	}

	newQuantity, err := s.repo.AddStock(ctx, batch.ID, bin.ID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add stock: %w", err)
	}

	s.invalidateStockViews(ctx)

	return &model.ReceiveResponse{
		Status:      "Stock Received",
		BatchNumber: batch.BatchNumber,
		Bin:         bin.BinCode,
		NewQuantity: newQuantity,
	}, nil
}

// GetLiveStock implements Service.GetLiveStock
func (s *InventoryService) GetLiveStock(ctx context.Context) ([]model.StockViewResponse, error) {
	if s.cache != nil {
		var cached []model.StockViewResponse
		found, err := s.cache.Get(ctx, CacheKeyLiveStock, &cached)
		if err != nil {
			logger.Warn("live stock cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if found {
			return cached, nil
		}
	}

	views, err := s.repo.LiveStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get live stock: %w", err)
	}

	resp := model.ToStockViewResponseList(views)

	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKeyLiveStock, resp, liveStockCacheTTL); err != nil {
			logger.Warn("live stock cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return resp, nil
}

// IngestTelemetry implements Service.IngestTelemetry.
// A breach quarantines the whole batch across every bin, not just the bin
// that tripped the sensor: the excursion damages the batch, not the shelf.
// Already-quarantined batches are reported but get no duplicate record;
// recalled batches are terminal and skipped entirely.
func (s *InventoryService) IngestTelemetry(ctx context.Context, req model.TelemetryRequest) (*model.TelemetryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	temperature := *req.Temperature

	bin, err := s.repo.GetBinByCode(ctx, req.BinCode)
	if err != nil {
		return nil, err
	}

	stocks, err := s.repo.StockInBin(ctx, bin.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read bin stock: %w", err)
	}

	coldChain := make([]model.BinStock, 0, len(stocks))
	productKeys := make([]string, 0, len(stocks))
	for _, bs := range stocks {
		if bs.RequiresColdChain {
			coldChain = append(coldChain, bs)
			productKeys = append(productKeys, bs.ProductID.String())
		}
	}

	if len(coldChain) == 0 {
		return &model.TelemetryResponse{Status: model.TelemetryStatusOK, Batches: []string{}}, nil
	}

	// Quarantine evaluation read-then-writes the same rows allocation reads,
	// so it holds the product locks until the records are committed.
	release, err := s.guard.AcquireAll(ctx, productKeys, s.lockWait())
	if err != nil {
		return nil, err
	}
	defer release()

	var records []model.QuarantineRecord
	breachedSet := make(map[string]bool)
	now := time.Now()

	for _, bs := range coldChain {
		maxTemp := bs.MaxAllowedTemp(s.engine.DefaultMaxTempC)

		if temperature <= maxTemp || bs.Recalled {
			continue
		}

		breachedSet[bs.BatchNumber] = true
		if bs.Quarantined {
			continue // idempotent re-ingest, no duplicate record
		}

		records = append(records, model.QuarantineRecord{
			ID:          uuid.New(),
			BatchID:     bs.BatchID,
			BinCode:     bin.BinCode,
			Reason:      fmt.Sprintf("Temp Spike: %.1f°C (Limit: %.1f°C)", temperature, maxTemp),
			Temperature: temperature,
			CreatedAt:   now,
		})
	}

	if len(breachedSet) == 0 {
		return &model.TelemetryResponse{Status: model.TelemetryStatusOK, Batches: []string{}}, nil
	}

	if err := s.repo.CreateQuarantineRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to quarantine batches: %w", err)
	}

	batches := make([]string, 0, len(breachedSet))
	for batchNumber := range breachedSet {
		batches = append(batches, batchNumber)
	}
	sort.Strings(batches)

	logger.Info("cold-chain breach quarantined", map[string]interface{}{
		"bin_code":    bin.BinCode,
		"temperature": temperature,
		"batches":     batches,
	})

	s.invalidateStockViews(ctx)

	return &model.TelemetryResponse{Status: model.TelemetryStatusAlert, Batches: batches}, nil
}

// CreateWarehouse implements Service.CreateWarehouse
func (s *InventoryService) CreateWarehouse(ctx context.Context, req model.CreateWarehouseRequest) (*model.Warehouse, error) {
	warehouse := &model.Warehouse{
		ID:           uuid.New(),
		Name:         req.Name,
		LocationCode: req.LocationCode,
	}
	if err := s.repo.CreateWarehouse(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// CreateBin implements Service.CreateBin
func (s *InventoryService) CreateBin(ctx context.Context, req model.CreateBinRequest) (*model.Bin, error) {
	bin := &model.Bin{
		ID:            uuid.New(),
		BinCode:       req.BinCode,
		IsColdStorage: req.IsColdStorage,
		WarehouseID:   req.WarehouseID,
	}
	if err := s.repo.CreateBin(ctx, bin); err != nil {
		return nil, err
	}
	return bin, nil
}

// invalidateStockViews drops the read models derived from the ledger: the
// live stock snapshot and the analytics namespace.
func (s *InventoryService) invalidateStockViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKeyLiveStock); err != nil {
		logger.Warn("live stock cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
	if err := s.cache.DeletePattern(ctx, analyticsService.CachePatternAnalytics); err != nil {
		logger.Warn("insights cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func sameDay(a, b time.Time) bool {
	return a.Format(model.DateLayout) == b.Format(model.DateLayout)
}
