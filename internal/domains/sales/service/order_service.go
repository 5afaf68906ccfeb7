package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pharmacore-backend/internal/config"
	analyticsService "pharmacore-backend/internal/domains/analytics/service"
	invService "pharmacore-backend/internal/domains/inventory/service"
	masterRepo "pharmacore-backend/internal/domains/master/repository"
	"pharmacore-backend/internal/domains/sales/model"
	"pharmacore-backend/internal/domains/sales/repository"
	"pharmacore-backend/pkg/cache"
	"pharmacore-backend/pkg/locking"
	"pharmacore-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// plannedDispatch is one (batch, bin) draw while the plan is being built.
// Expiry and product are carried for the response only; they are not
// persisted on the dispatch row.
type plannedDispatch struct {
	record    model.DispatchRecord
	productID uuid.UUID
	expiry    time.Time
}

type OrderService struct {
	repo    repository.RepositoryInterface
	catalog masterRepo.RepositoryInterface
	guard   *locking.Guard
	cache   cache.Cache
	engine  config.EngineConfig
}

// NewService creates a new order service
func NewService(
	repo repository.RepositoryInterface,
	catalog masterRepo.RepositoryInterface,
	guard *locking.Guard,
	c cache.Cache,
	engine config.EngineConfig,
) ServiceInterface {
	return &OrderService{
		repo:    repo,
		catalog: catalog,
		guard:   guard,
		cache:   c,
		engine:  engine,
	}
}

// CreateOrder implements Service.CreateOrder.
// Planning and commit happen under the locks of every product on the order,
// so within one instance the committed plan cannot go stale. The repository
// still re-validates quantities at commit time for multi-writer deployments.
func (s *OrderService) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	// Resolve products up front: an unknown product fails the whole order
	// before any lock is taken.
	productKeys := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if _, err := s.catalog.GetProductByID(ctx, item.ProductID); err != nil {
			return nil, err
		}
		productKeys = append(productKeys, item.ProductID.String())
	}

	wait := time.Duration(s.engine.LockWaitMS) * time.Millisecond
	release, err := s.guard.AcquireAll(ctx, productKeys, wait)
	if err != nil {
		return nil, err
	}
	defer release()

	order := &model.SalesOrder{
		ID:           uuid.New(),
		CustomerName: req.CustomerName,
		Status:       model.OrderStatusAllocated,
		TotalAmount:  decimal.Zero,
		CreatedAt:    time.Now(),
	}

	// consumed tracks quantities already claimed by earlier lines, so a
	// product repeated across lines cannot double-spend an assignment.
	consumed := make(map[uuid.UUID]int)
	byStock := make(map[uuid.UUID]*plannedDispatch)
	var planned []*plannedDispatch

	for _, item := range req.Items {
		candidates, err := s.repo.EligibleStock(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load eligible stock: %w", err)
		}

		available := 0
		for _, c := range candidates {
			available += c.Quantity - consumed[c.StockID]
		}
		if available < item.Quantity {
			return nil, model.NewInsufficientStockError(item.ProductID, item.Quantity, available)
		}

		remaining := item.Quantity
		for _, c := range candidates {
			if remaining == 0 {
				break
			}
			free := c.Quantity - consumed[c.StockID]
			if free <= 0 {
				continue
			}

			take := free
			if take > remaining {
				take = remaining
			}
			remaining -= take
			consumed[c.StockID] += take

			if p, ok := byStock[c.StockID]; ok {
				p.record.Quantity += take
				continue
			}
			p := &plannedDispatch{
				record: model.DispatchRecord{
					ID:           uuid.New(),
					OrderID:      order.ID,
					StockID:      c.StockID,
					BatchID:      c.BatchID,
					BatchNumber:  c.BatchNumber,
					BinID:        c.BinID,
					BinCode:      c.BinCode,
					CustomerName: req.CustomerName,
					Quantity:     take,
					CreatedAt:    order.CreatedAt,
				},
				productID: item.ProductID,
				expiry:    c.ExpiryDate,
			}
			byStock[c.StockID] = p
			planned = append(planned, p)
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.TotalAmount = order.TotalAmount.Add(lineTotal)
		order.Items = append(order.Items, model.SalesOrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order.Dispatches = make([]model.DispatchRecord, 0, len(planned))
	for _, p := range planned {
		order.Dispatches = append(order.Dispatches, p.record)
	}

	if err := s.repo.CommitAllocation(ctx, order); err != nil {
		return nil, err
	}

	s.invalidateStockViews(ctx)

	logger.Info("order allocated", map[string]interface{}{
		"order_id":   order.ID.String(),
		"customer":   order.CustomerName,
		"lines":      len(order.Items),
		"dispatches": len(order.Dispatches),
	})

	resp := &model.OrderResponse{
		ID:           order.ID.String(),
		Status:       order.Status,
		CustomerName: order.CustomerName,
		TotalAmount:  order.TotalAmount,
		Allocations:  make([]model.AllocationResponse, 0, len(planned)),
		CreatedAt:    order.CreatedAt,
	}
	for _, p := range planned {
		resp.Allocations = append(resp.Allocations, model.AllocationResponse{
			ProductID:   p.productID.String(),
			BatchNumber: p.record.BatchNumber,
			BinCode:     p.record.BinCode,
			Quantity:    p.record.Quantity,
			ExpiryDate:  p.expiry.Format(dateLayout),
		})
	}

	return resp, nil
}

// invalidateStockViews drops the read models derived from the ledger: the
// live stock snapshot and the analytics namespace.
func (s *OrderService) invalidateStockViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, invService.CacheKeyLiveStock); err != nil {
		logger.Warn("live stock cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
	if err := s.cache.DeletePattern(ctx, analyticsService.CachePatternAnalytics); err != nil {
		logger.Warn("insights cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
