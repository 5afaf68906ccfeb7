package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pharmacore-backend/internal/config"
	analyticsService "pharmacore-backend/internal/domains/analytics/service"
	"pharmacore-backend/internal/domains/compliance/model"
	"pharmacore-backend/internal/domains/compliance/repository"
	invService "pharmacore-backend/internal/domains/inventory/service"
	salesRepo "pharmacore-backend/internal/domains/sales/repository"
	"pharmacore-backend/internal/shared"
	"pharmacore-backend/pkg/cache"
	"pharmacore-backend/pkg/locking"
	"pharmacore-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// TaskEnqueuer is the slice of asynq.Client the service needs. Notification
// fan-out is best-effort after the recall record commits.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ComplianceService struct {
	repo     repository.RepositoryInterface
	trail    salesRepo.RepositoryInterface
	enqueuer TaskEnqueuer
	guard    *locking.Guard
	cache    cache.Cache
	engine   config.EngineConfig
}

// NewService creates a new compliance service
func NewService(
	repo repository.RepositoryInterface,
	trail salesRepo.RepositoryInterface,
	enqueuer TaskEnqueuer,
	guard *locking.Guard,
	c cache.Cache,
	engine config.EngineConfig,
) ServiceInterface {
	return &ComplianceService{
		repo:     repo,
		trail:    trail,
		enqueuer: enqueuer,
		guard:    guard,
		cache:    c,
		engine:   engine,
	}
}

func (s *ComplianceService) lockWait() time.Duration {
	return time.Duration(s.engine.LockWaitMS) * time.Millisecond
}

// TraceBatch implements Service.TraceBatch
func (s *ComplianceService) TraceBatch(ctx context.Context, batchNumber string) (*model.TraceResponse, error) {
	facts, err := s.repo.GetBatchFacts(ctx, batchNumber)
	if err != nil {
		return nil, err
	}

	locations, err := s.repo.CurrentLocations(ctx, facts.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current locations: %w", err)
	}

	dispatches, err := s.trail.DispatchTrail(ctx, facts.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch trail: %w", err)
	}

	resp := &model.TraceResponse{
		BatchInfo: model.BatchInfoResponse{
			BatchNumber: facts.BatchNumber,
			Product:     facts.ProductName,
			Expiry:      facts.ExpiryDate.Format(dateLayout),
			Mfg:         facts.MfgDate.Format(dateLayout),
		},
		CurrentLocations: make([]model.LocationResponse, 0, len(locations)),
		SalesTrail:       make([]model.SalesTrailEntry, 0, len(dispatches)),
	}

	for _, l := range locations {
		resp.CurrentLocations = append(resp.CurrentLocations, model.LocationResponse{
			Bin:    l.BinCode,
			Qty:    l.Quantity,
			Status: "In Stock",
		})
	}

	for _, d := range dispatches {
		resp.SalesTrail = append(resp.SalesTrail, model.SalesTrailEntry{
			OrderID:  d.OrderID.String(),
			Customer: d.CustomerName,
			Date:     d.CreatedAt.Format(time.RFC3339),
			QtySold:  d.Quantity,
		})
	}

	return resp, nil
}

// InitiateRecall implements Service.InitiateRecall.
// The product lock serializes the recall with in-flight allocations: an
// order planning against this batch either commits its dispatch before the
// trail is read here, so its customer is notified, or fails the commit-time
// re-validation once the record exists. The record itself commits before
// any notification is enqueued: a crash between the two loses notifications
// but never double-sends them, and a retried HTTP call hits
// ErrAlreadyRecalled instead of re-notifying.
func (s *ComplianceService) InitiateRecall(ctx context.Context, batchNumber string) (*model.RecallResponse, error) {
	facts, err := s.repo.GetBatchFacts(ctx, batchNumber)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, facts.ProductID.String(), s.lockWait())
	if err != nil {
		return nil, err
	}
	defer release()

	dispatches, err := s.trail.DispatchTrail(ctx, facts.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch trail: %w", err)
	}

	seen := make(map[string]bool, len(dispatches))
	customers := make([]string, 0, len(dispatches))
	for _, d := range dispatches {
		if !seen[d.CustomerName] {
			seen[d.CustomerName] = true
			customers = append(customers, d.CustomerName)
		}
	}
	sort.Strings(customers)

	record := &model.RecallRecord{
		ID:                uuid.New(),
		BatchID:           facts.BatchID,
		NotifiedCustomers: customers,
		NotifiedCount:     len(customers),
		CreatedAt:         time.Now(),
	}
	if err := s.repo.CreateRecall(ctx, record); err != nil {
		return nil, err
	}

	logger.Info("batch recalled", map[string]interface{}{
		"batch_number": facts.BatchNumber,
		"product":      facts.ProductName,
		"customers":    len(customers),
	})

	s.invalidateStockViews(ctx)
	s.enqueueNotices(ctx, facts, customers)

	return &model.RecallResponse{
		Status:            "Recall Initiated",
		Message:           fmt.Sprintf("Alerts are being sent to %d affected customers in the background.", len(customers)),
		AffectedCustomers: len(customers),
	}, nil
}

// invalidateStockViews drops the read models derived from the ledger: a
// recall flips the hold flag in the live view and removes the batch from
// the eligible pool, so both go stale at once.
func (s *ComplianceService) invalidateStockViews(ctx context.Context) {
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

func (s *ComplianceService) enqueueNotices(ctx context.Context, facts *model.BatchFacts, customers []string) {
	if s.enqueuer == nil {
		return
	}

	for _, customer := range customers {
		payload, err := json.Marshal(shared.RecallNoticePayload{
			BatchNumber: facts.BatchNumber,
			ProductName: facts.ProductName,
			Customer:    customer,
		})
		if err != nil {
			logger.Error("failed to marshal recall notice", err)
			continue
		}

		task := asynq.NewTask(shared.TypeSendRecallNotice, payload)
		if _, err := s.enqueuer.EnqueueContext(ctx, task,
			asynq.Queue(shared.QueueCompliance),
			asynq.MaxRetry(5),
		); err != nil {
			logger.Warn("failed to enqueue recall notice", map[string]interface{}{
				"error":        err.Error(),
				"batch_number": facts.BatchNumber,
				"customer":     customer,
			})
		}
	}
}
