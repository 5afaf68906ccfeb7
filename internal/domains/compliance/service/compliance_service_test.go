package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacore-backend/internal/config"
	"pharmacore-backend/internal/domains/compliance/model"
	salesModel "pharmacore-backend/internal/domains/sales/model"
	"pharmacore-backend/internal/shared"
	"pharmacore-backend/pkg/locking"
)

// ===================================
// IN-MEMORY FAKES
// ===================================

type fakeComplianceRepo struct {
	facts     map[string]*model.BatchFacts // by batch number
	locations map[uuid.UUID][]model.Location
	recalls   map[uuid.UUID]*model.RecallRecord
}

func newFakeComplianceRepo() *fakeComplianceRepo {
	return &fakeComplianceRepo{
		facts:     make(map[string]*model.BatchFacts),
		locations: make(map[uuid.UUID][]model.Location),
		recalls:   make(map[uuid.UUID]*model.RecallRecord),
	}
}

func (f *fakeComplianceRepo) GetBatchFacts(_ context.Context, batchNumber string) (*model.BatchFacts, error) {
	if facts, ok := f.facts[batchNumber]; ok {
		return facts, nil
	}
	return nil, model.NewBatchNotFoundError(batchNumber)
}

func (f *fakeComplianceRepo) CurrentLocations(_ context.Context, batchID uuid.UUID) ([]model.Location, error) {
	return f.locations[batchID], nil
}

func (f *fakeComplianceRepo) CreateRecall(_ context.Context, record *model.RecallRecord) error {
	if _, ok := f.recalls[record.BatchID]; ok {
		return model.NewAlreadyRecalledError(record.BatchID.String())
	}
	f.recalls[record.BatchID] = record
	return nil
}

type fakeTrail struct {
	mu         sync.Mutex
	dispatches map[uuid.UUID][]salesModel.DispatchRecord
}

func (f *fakeTrail) add(d salesModel.DispatchRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dispatches == nil {
		f.dispatches = make(map[uuid.UUID][]salesModel.DispatchRecord)
	}
	f.dispatches[d.BatchID] = append(f.dispatches[d.BatchID], d)
}

func (f *fakeTrail) EligibleStock(_ context.Context, _ uuid.UUID) ([]salesModel.EligibleStock, error) {
	return nil, nil
}

func (f *fakeTrail) CommitAllocation(_ context.Context, _ *salesModel.SalesOrder) error {
	return nil
}

func (f *fakeTrail) DispatchTrail(_ context.Context, batchID uuid.UUID) ([]salesModel.DispatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.dispatches[batchID], nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (f *fakeEnqueuer) customers(t *testing.T) []string {
	t.Helper()
	out := make([]string, 0, len(f.tasks))
	for _, task := range f.tasks {
		var payload shared.RecallNoticePayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		out = append(out, payload.Customer)
	}
	return out
}

// ===================================
// TEST SETUP
// ===================================

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		LockWaitMS:         500,
		CriticalExpiryDays: 30,
		WarningExpiryDays:  90,
		LowStockUnits:      50,
		DefaultMaxTempC:    8.0,
	}
}

func newTestComplianceService(repo *fakeComplianceRepo, trail *fakeTrail, enqueuer *fakeEnqueuer) ServiceInterface {
	return NewService(repo, trail, enqueuer, locking.NewGuard(), nil, testEngineConfig())
}

func seedBatch(repo *fakeComplianceRepo, batchNumber, productName string) *model.BatchFacts {
	facts := &model.BatchFacts{
		BatchID:     uuid.New(),
		BatchNumber: batchNumber,
		ProductID:   uuid.New(),
		ProductName: productName,
		ExpiryDate:  date("2025-01-01"),
		MfgDate:     date("2024-01-01"),
	}
	repo.facts[batchNumber] = facts
	return facts
}

func dispatch(batchID uuid.UUID, customer string, qty int, at time.Time) salesModel.DispatchRecord {
	return salesModel.DispatchRecord{
		ID:           uuid.New(),
		OrderID:      uuid.New(),
		BatchID:      batchID,
		BatchNumber:  "X1",
		BinID:        uuid.New(),
		BinCode:      "A-01-01",
		CustomerName: customer,
		Quantity:     qty,
		CreatedAt:    at,
	}
}

// ===================================
// TRACE
// ===================================

func TestTraceBatch(t *testing.T) {
	repo := newFakeComplianceRepo()
	facts := seedBatch(repo, "X1", "Paracetamol 500")
	repo.locations[facts.BatchID] = []model.Location{
		{BinCode: "A-01-01", Quantity: 30},
	}

	older := dispatch(facts.BatchID, "City Hospital", 100, date("2024-06-01"))
	newer := dispatch(facts.BatchID, "Metro Pharmacy", 20, date("2024-07-01"))
	trail := &fakeTrail{dispatches: map[uuid.UUID][]salesModel.DispatchRecord{
		facts.BatchID: {newer, older}, // repository returns newest first
	}}

	svc := newTestComplianceService(repo, trail, &fakeEnqueuer{})

	res, err := svc.TraceBatch(context.Background(), "X1")
	require.NoError(t, err)

	assert.Equal(t, "X1", res.BatchInfo.BatchNumber)
	assert.Equal(t, "Paracetamol 500", res.BatchInfo.Product)
	assert.Equal(t, "2025-01-01", res.BatchInfo.Expiry)
	assert.Equal(t, "2024-01-01", res.BatchInfo.Mfg)

	require.Len(t, res.CurrentLocations, 1)
	assert.Equal(t, "A-01-01", res.CurrentLocations[0].Bin)
	assert.Equal(t, 30, res.CurrentLocations[0].Qty)
	assert.Equal(t, "In Stock", res.CurrentLocations[0].Status)

	require.Len(t, res.SalesTrail, 2)
	assert.Equal(t, "Metro Pharmacy", res.SalesTrail[0].Customer)
	assert.Equal(t, 20, res.SalesTrail[0].QtySold)
	assert.Equal(t, "City Hospital", res.SalesTrail[1].Customer)
}

func TestTraceBatchIsIdempotent(t *testing.T) {
	repo := newFakeComplianceRepo()
	facts := seedBatch(repo, "X1", "Paracetamol 500")
	repo.locations[facts.BatchID] = []model.Location{{BinCode: "A-01-01", Quantity: 30}}
	trail := &fakeTrail{dispatches: map[uuid.UUID][]salesModel.DispatchRecord{
		facts.BatchID: {dispatch(facts.BatchID, "City Hospital", 100, date("2024-06-01"))},
	}}

	svc := newTestComplianceService(repo, trail, &fakeEnqueuer{})

	first, err := svc.TraceBatch(context.Background(), "X1")
	require.NoError(t, err)
	second, err := svc.TraceBatch(context.Background(), "X1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTraceBatchNotFound(t *testing.T) {
	svc := newTestComplianceService(newFakeComplianceRepo(), &fakeTrail{}, &fakeEnqueuer{})

	_, err := svc.TraceBatch(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, model.IsNotFoundError(err))
}

// ===================================
// RECALL
// ===================================

func TestInitiateRecallNotifiesDistinctCustomersOnce(t *testing.T) {
	repo := newFakeComplianceRepo()
	facts := seedBatch(repo, "X1", "Insulin 100IU")

	trail := &fakeTrail{dispatches: map[uuid.UUID][]salesModel.DispatchRecord{
		facts.BatchID: {
			dispatch(facts.BatchID, "City Hospital", 100, date("2024-06-01")),
			dispatch(facts.BatchID, "ops@metro-pharmacy.com", 20, date("2024-07-01")),
			dispatch(facts.BatchID, "City Hospital", 50, date("2024-08-01")), // repeat buyer
		},
	}}
	enqueuer := &fakeEnqueuer{}

	svc := newTestComplianceService(repo, trail, enqueuer)

	res, err := svc.InitiateRecall(context.Background(), "X1")
	require.NoError(t, err)

	assert.Equal(t, "Recall Initiated", res.Status)
	assert.Equal(t, 2, res.AffectedCustomers)
	assert.ElementsMatch(t, []string{"City Hospital", "ops@metro-pharmacy.com"}, enqueuer.customers(t))

	record := repo.recalls[facts.BatchID]
	require.NotNil(t, record)
	assert.Equal(t, 2, record.NotifiedCount)
}

func TestInitiateRecallIsTerminal(t *testing.T) {
	repo := newFakeComplianceRepo()
	facts := seedBatch(repo, "X1", "Insulin 100IU")
	trail := &fakeTrail{dispatches: map[uuid.UUID][]salesModel.DispatchRecord{
		facts.BatchID: {dispatch(facts.BatchID, "City Hospital", 100, date("2024-06-01"))},
	}}
	enqueuer := &fakeEnqueuer{}

	svc := newTestComplianceService(repo, trail, enqueuer)

	_, err := svc.InitiateRecall(context.Background(), "X1")
	require.NoError(t, err)
	require.Len(t, enqueuer.tasks, 1)

	// Second call fails and sends nothing further.
	_, err = svc.InitiateRecall(context.Background(), "X1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAlreadyRecalled)
	assert.Len(t, enqueuer.tasks, 1)
}

func TestInitiateRecallWithEmptyTrail(t *testing.T) {
	repo := newFakeComplianceRepo()
	seedBatch(repo, "X1", "Insulin 100IU")
	enqueuer := &fakeEnqueuer{}

	svc := newTestComplianceService(repo, &fakeTrail{dispatches: map[uuid.UUID][]salesModel.DispatchRecord{}}, enqueuer)

	res, err := svc.InitiateRecall(context.Background(), "X1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.AffectedCustomers)
	assert.Empty(t, enqueuer.tasks)
}

func TestInitiateRecallWaitsForInFlightAllocation(t *testing.T) {
	repo := newFakeComplianceRepo()
	facts := seedBatch(repo, "X1", "Insulin 100IU")
	trail := &fakeTrail{}
	enqueuer := &fakeEnqueuer{}

	guard := locking.NewGuard()
	svc := NewService(repo, trail, enqueuer, guard, nil, testEngineConfig())

	// An allocator holds the product lock with its dispatch not yet
	// committed, as CreateOrder does between planning and commit.
	release, err := guard.Acquire(context.Background(), facts.ProductID.String(), time.Second)
	require.NoError(t, err)

	type recallResult struct {
		res *model.RecallResponse
		err error
	}
	resCh := make(chan recallResult, 1)
	go func() {
		res, err := svc.InitiateRecall(context.Background(), "X1")
		resCh <- recallResult{res: res, err: err}
	}()

	// The recall must not read the trail while the allocation is in flight.
	select {
	case <-resCh:
		t.Fatal("recall completed while an allocation held the product lock")
	case <-time.After(50 * time.Millisecond):
	}

	// The allocation commits its dispatch and releases the lock.
	trail.add(dispatch(facts.BatchID, "City Hospital", 10, date("2024-06-01")))
	release()

	r := <-resCh
	require.NoError(t, r.err)

	// The customer who bought during the race is notified, not missed.
	assert.Equal(t, 1, r.res.AffectedCustomers)
	assert.Equal(t, []string{"City Hospital"}, enqueuer.customers(t))

	record := repo.recalls[facts.BatchID]
	require.NotNil(t, record)
	assert.Equal(t, []string{"City Hospital"}, record.NotifiedCustomers)
}

func TestInitiateRecallLockTimeoutIsRetryable(t *testing.T) {
	repo := newFakeComplianceRepo()
	facts := seedBatch(repo, "X1", "Insulin 100IU")
	enqueuer := &fakeEnqueuer{}

	guard := locking.NewGuard()
	engine := testEngineConfig()
	engine.LockWaitMS = 50
	svc := NewService(repo, &fakeTrail{}, enqueuer, guard, nil, engine)

	release, err := guard.Acquire(context.Background(), facts.ProductID.String(), time.Second)
	require.NoError(t, err)
	defer release()

	_, err = svc.InitiateRecall(context.Background(), "X1")
	require.Error(t, err)
	assert.ErrorIs(t, err, locking.ErrAcquireTimeout)

	// Nothing committed, nothing enqueued; the retry starts clean.
	assert.Nil(t, repo.recalls[facts.BatchID])
	assert.Empty(t, enqueuer.tasks)
}

func TestInitiateRecallUnknownBatch(t *testing.T) {
	svc := newTestComplianceService(newFakeComplianceRepo(), &fakeTrail{}, &fakeEnqueuer{})

	_, err := svc.InitiateRecall(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, model.IsNotFoundError(err))
}
