package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacore-backend/internal/config"
	"pharmacore-backend/internal/domains/inventory/model"
	masterModel "pharmacore-backend/internal/domains/master/model"
	"pharmacore-backend/pkg/locking"
)

// ===================================
// IN-MEMORY FAKES
// ===================================

type fakeCatalog struct {
	products map[uuid.UUID]*masterModel.Product
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id uuid.UUID) (*masterModel.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, masterModel.NewProductNotFoundError(id)
}

func (f *fakeCatalog) ListProducts(_ context.Context) ([]masterModel.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) ListManufacturers(_ context.Context) ([]masterModel.Manufacturer, error) {
	return nil, nil
}

// fakeLedger implements the inventory repository contract in memory.
type fakeLedger struct {
	mu          sync.Mutex
	products    map[uuid.UUID]*masterModel.Product
	bins        map[string]*model.Bin
	binsByID    map[uuid.UUID]*model.Bin
	batches     map[string]*model.Batch // by batch number
	batchesByID map[uuid.UUID]*model.Batch
	stocks      map[string]int // batchID|binID -> quantity
	quarantined map[uuid.UUID][]model.QuarantineRecord
	recalled    map[uuid.UUID]bool
	warehouses  map[string]*model.Warehouse

	// failStockInsert makes the stock half of CreateBatchWithStock fail,
	// which must roll back the batch insert as well.
	failStockInsert bool
}

func newFakeLedger(products map[uuid.UUID]*masterModel.Product) *fakeLedger {
	return &fakeLedger{
		products:    products,
		bins:        make(map[string]*model.Bin),
		binsByID:    make(map[uuid.UUID]*model.Bin),
		batches:     make(map[string]*model.Batch),
		batchesByID: make(map[uuid.UUID]*model.Batch),
		stocks:      make(map[string]int),
		quarantined: make(map[uuid.UUID][]model.QuarantineRecord),
		recalled:    make(map[uuid.UUID]bool),
		warehouses:  make(map[string]*model.Warehouse),
	}
}

func stockKey(batchID, binID uuid.UUID) string {
	return batchID.String() + "|" + binID.String()
}

func (f *fakeLedger) addBin(binCode string, cold bool) *model.Bin {
	f.mu.Lock()
	defer f.mu.Unlock()

	bin := &model.Bin{ID: uuid.New(), BinCode: binCode, IsColdStorage: cold, WarehouseID: uuid.New()}
	f.bins[binCode] = bin
	f.binsByID[bin.ID] = bin
	return bin
}

func (f *fakeLedger) CreateWarehouse(_ context.Context, warehouse *model.Warehouse) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.warehouses[warehouse.LocationCode]; ok {
		return model.ErrWarehouseAlreadyExists
	}
	f.warehouses[warehouse.LocationCode] = warehouse
	return nil
}

func (f *fakeLedger) CreateBin(_ context.Context, bin *model.Bin) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.bins[bin.BinCode]; ok {
		return fmt.Errorf("%w: bin_code=%s", model.ErrBinAlreadyExists, bin.BinCode)
	}
	f.bins[bin.BinCode] = bin
	f.binsByID[bin.ID] = bin
	return nil
}

func (f *fakeLedger) GetBinByCode(_ context.Context, binCode string) (*model.Bin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if bin, ok := f.bins[binCode]; ok {
		return bin, nil
	}
	return nil, model.NewBinNotFoundError(binCode)
}

func (f *fakeLedger) GetBatchByNumber(_ context.Context, batchNumber string) (*model.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if batch, ok := f.batches[batchNumber]; ok {
		copied := *batch
		return &copied, nil
	}
	return nil, model.NewBatchNotFoundError(batchNumber)
}

func (f *fakeLedger) CreateBatchWithStock(_ context.Context, batch *model.Batch, binID uuid.UUID, quantity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.batches[batch.BatchNumber]; ok {
		return 0, model.NewBatchConflictError(batch.BatchNumber, "batch_number")
	}
	if f.failStockInsert {
		return 0, fmt.Errorf("failed to add stock: connection reset")
	}
	copied := *batch
	f.batches[batch.BatchNumber] = &copied
	f.batchesByID[batch.ID] = &copied
	key := stockKey(batch.ID, binID)
	f.stocks[key] += quantity
	return f.stocks[key], nil
}

func (f *fakeLedger) AddStock(_ context.Context, batchID, binID uuid.UUID, quantity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := stockKey(batchID, binID)
	f.stocks[key] += quantity
	return f.stocks[key], nil
}

func (f *fakeLedger) BatchHolds(_ context.Context, batchID uuid.UUID) (*model.BatchHolds, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return &model.BatchHolds{
		Quarantined: len(f.quarantined[batchID]) > 0,
		Recalled:    f.recalled[batchID],
	}, nil
}

func (f *fakeLedger) LiveStock(_ context.Context) ([]model.StockView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var views []model.StockView
	for key, qty := range f.stocks {
		if qty <= 0 {
			continue
		}
		batchID := uuid.MustParse(key[:36])
		binID := uuid.MustParse(key[37:])
		batch := f.batchesByID[batchID]
		product := f.products[batch.ProductID]
		views = append(views, model.StockView{
			BinCode:       f.binsByID[binID].BinCode,
			ProductName:   product.Name,
			SKU:           product.SKUCode,
			BatchNumber:   batch.BatchNumber,
			ExpiryDate:    batch.ExpiryDate,
			Quantity:      qty,
			IsColdChain:   product.RequiresColdChain,
			IsQuarantined: len(f.quarantined[batchID]) > 0,
		})
	}
	return views, nil
}

func (f *fakeLedger) StockInBin(_ context.Context, binID uuid.UUID) ([]model.BinStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.BinStock
	for key, qty := range f.stocks {
		if qty <= 0 {
			continue
		}
		batchID := uuid.MustParse(key[:36])
		rowBinID := uuid.MustParse(key[37:])
		if rowBinID != binID {
			continue
		}
		batch := f.batchesByID[batchID]
		product := f.products[batch.ProductID]
		out = append(out, model.BinStock{
			StockID:           uuid.New(),
			BatchID:           batchID,
			BatchNumber:       batch.BatchNumber,
			ProductID:         product.ID,
			ProductName:       product.Name,
			RequiresColdChain: product.RequiresColdChain,
			MaxTemp:           product.MaxTemp,
			Quantity:          qty,
			Quarantined:       len(f.quarantined[batchID]) > 0,
			Recalled:          f.recalled[batchID],
		})
	}
	return out, nil
}

func (f *fakeLedger) CreateQuarantineRecords(_ context.Context, records []model.QuarantineRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range records {
		if len(f.quarantined[r.BatchID]) > 0 {
			continue // mirrors ON CONFLICT DO NOTHING
		}
		f.quarantined[r.BatchID] = append(f.quarantined[r.BatchID], r)
	}
	return nil
}

// ===================================
// TEST SETUP
// ===================================

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		LockWaitMS:         500,
		CriticalExpiryDays: 30,
		WarningExpiryDays:  90,
		LowStockUnits:      50,
		DefaultMaxTempC:    8.0,
	}
}

func float64Ptr(v float64) *float64 { return &v }

func coldChainProduct(maxTemp *float64) *masterModel.Product {
	return &masterModel.Product{
		ID:                uuid.New(),
		SKUCode:           "INSU-100-VIAL",
		Name:              "Insulin 100IU",
		BaseUOM:           "VIAL",
		RequiresColdChain: true,
		MaxTemp:           maxTemp,
	}
}

func ambientProduct() *masterModel.Product {
	return &masterModel.Product{
		ID:      uuid.New(),
		SKUCode: "PARA-500-TAB",
		Name:    "Paracetamol 500",
		BaseUOM: "STRIP",
	}
}

func newTestInventoryService(ledger *fakeLedger, catalog *fakeCatalog) ServiceInterface {
	return NewService(ledger, catalog, locking.NewGuard(), nil, testEngineConfig())
}

func receive(t *testing.T, svc ServiceInterface, productID uuid.UUID, batch, bin string, expiry string, qty int) *model.ReceiveResponse {
	t.Helper()
	res, err := svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     productID,
		BatchNumber:   batch,
		ExpiryDate:    expiry,
		MfgDate:       "2024-01-01",
		Quantity:      qty,
		TargetBinCode: bin,
	})
	require.NoError(t, err)
	return res
}

// ===================================
// RECEIVING
// ===================================

func TestReceiveStockCreatesBatchAndAccumulates(t *testing.T) {
	product := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)
	ledger.addBin("A-01-02", false)

	svc := newTestInventoryService(ledger, catalog)

	res := receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 100)
	assert.Equal(t, "Stock Received", res.Status)
	assert.Equal(t, "X1", res.BatchNumber)
	assert.Equal(t, "A-01-01", res.Bin)
	assert.Equal(t, 100, res.NewQuantity)

	// Same batch, same bin: quantity accumulates on the same assignment.
	res = receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 50)
	assert.Equal(t, 150, res.NewQuantity)

	// Same batch, different bin: fresh assignment.
	res = receive(t, svc, product.ID, "X1", "A-01-02", "2025-01-01", 25)
	assert.Equal(t, 25, res.NewQuantity)
}

func TestReceiveStockFirstReceiptIsAtomic(t *testing.T) {
	product := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)

	svc := newTestInventoryService(ledger, catalog)

	ledger.failStockInsert = true
	_, err := svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     product.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2025-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      100,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)

	// The failed receipt left no empty batch row behind.
	_, err = ledger.GetBatchByNumber(context.Background(), "X1")
	assert.True(t, model.IsNotFoundError(err))

	// A retry starts clean and succeeds.
	ledger.failStockInsert = false
	res := receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 100)
	assert.Equal(t, 100, res.NewQuantity)
}

func TestReceiveStockRejectsConflictingBatchIdentity(t *testing.T) {
	product := ambientProduct()
	other := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{
		product.ID: product,
		other.ID:   other,
	}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 100)

	// Different expiry for the same batch number.
	_, err := svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     product.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2025-06-01",
		MfgDate:       "2024-01-01",
		Quantity:      10,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBatchConflict)

	// Batch numbers are globally unique: another product reusing X1 conflicts.
	_, err = svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     other.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2025-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      10,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBatchConflict)
}

func TestReceiveStockRejectsHeldBatches(t *testing.T) {
	product := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 100)

	batch := ledger.batches["X1"]
	ledger.quarantined[batch.ID] = []model.QuarantineRecord{{ID: uuid.New(), BatchID: batch.ID}}

	_, err := svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     product.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2025-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      10,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBatchOnHold)
}

func TestReceiveStockValidation(t *testing.T) {
	product := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)

	svc := newTestInventoryService(ledger, catalog)

	// Non-positive quantity.
	_, err := svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     product.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2025-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      0,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))

	// Expiry not after manufacturing date.
	_, err = svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     product.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2024-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      10,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidExpiry)

	// Unknown bin.
	_, err = svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     product.ID,
		BatchNumber:   "X1",
		ExpiryDate:    "2025-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      10,
		TargetBinCode: "Z-99-99",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBinNotFound)

	// Unknown product.
	_, err = svc.ReceiveStock(context.Background(), model.InboundRequest{
		ProductID:     uuid.New(),
		BatchNumber:   "X1",
		ExpiryDate:    "2025-01-01",
		MfgDate:       "2024-01-01",
		Quantity:      10,
		TargetBinCode: "A-01-01",
	})
	require.Error(t, err)
	assert.True(t, masterModel.IsNotFoundError(err))
}

// ===================================
// TELEMETRY
// ===================================

func TestIngestTelemetryQuarantinesWholeBatch(t *testing.T) {
	product := coldChainProduct(float64Ptr(8.0))
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", true)
	ledger.addBin("A-01-02", true)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 60)
	receive(t, svc, product.ID, "X1", "A-01-02", "2025-01-01", 40)

	temp := 12.0
	res, err := svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "A-01-01",
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TelemetryStatusAlert, res.Status)
	assert.Equal(t, []string{"X1"}, res.Batches)

	// One record quarantines the batch everywhere, including A-01-02.
	batch := ledger.batches["X1"]
	require.Len(t, ledger.quarantined[batch.ID], 1)
	rec := ledger.quarantined[batch.ID][0]
	assert.Equal(t, "A-01-01", rec.BinCode)
	assert.Equal(t, "Temp Spike: 12.0°C (Limit: 8.0°C)", rec.Reason)
}

func TestIngestTelemetryIsIdempotent(t *testing.T) {
	product := coldChainProduct(float64Ptr(8.0))
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", true)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 60)

	temp := 12.0
	req := model.TelemetryRequest{BinCode: "A-01-01", Temperature: &temp}

	res, err := svc.IngestTelemetry(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.TelemetryStatusAlert, res.Status)

	res, err = svc.IngestTelemetry(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.TelemetryStatusAlert, res.Status)
	assert.Equal(t, []string{"X1"}, res.Batches)

	batch := ledger.batches["X1"]
	assert.Len(t, ledger.quarantined[batch.ID], 1)
}

func TestIngestTelemetryWithinLimitIsOK(t *testing.T) {
	product := coldChainProduct(float64Ptr(8.0))
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", true)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 60)

	temp := 7.9
	res, err := svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "A-01-01",
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TelemetryStatusOK, res.Status)
	assert.Empty(t, res.Batches)
}

func TestIngestTelemetryIgnoresAmbientProducts(t *testing.T) {
	product := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 60)

	temp := 40.0
	res, err := svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "A-01-01",
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TelemetryStatusOK, res.Status)
	batch := ledger.batches["X1"]
	assert.Empty(t, ledger.quarantined[batch.ID])
}

func TestIngestTelemetryUsesDefaultLimitWhenUnset(t *testing.T) {
	product := coldChainProduct(nil) // falls back to engine default of 8.0
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", true)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 60)

	temp := 9.0
	res, err := svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "A-01-01",
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TelemetryStatusAlert, res.Status)
}

func TestIngestTelemetrySkipsRecalledBatches(t *testing.T) {
	product := coldChainProduct(float64Ptr(8.0))
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", true)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 60)

	batch := ledger.batches["X1"]
	ledger.recalled[batch.ID] = true

	temp := 12.0
	res, err := svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "A-01-01",
		Temperature: &temp,
	})
	require.NoError(t, err)

	// Recall is terminal; no quarantine piles on top of it.
	assert.Equal(t, model.TelemetryStatusOK, res.Status)
	assert.Empty(t, ledger.quarantined[batch.ID])
}

func TestIngestTelemetryHardInputErrors(t *testing.T) {
	product := coldChainProduct(float64Ptr(8.0))
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", true)

	svc := newTestInventoryService(ledger, catalog)

	// Unknown bin must fail loudly, never be dropped.
	temp := 12.0
	_, err := svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "Z-99-99",
		Temperature: &temp,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBinNotFound)

	// Physically implausible reading.
	bad := 250.0
	_, err = svc.IngestTelemetry(context.Background(), model.TelemetryRequest{
		BinCode:     "A-01-01",
		Temperature: &bad,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTemperature)
}

// ===================================
// CONSERVATION
// ===================================

func TestConcurrentReceiptsConserveQuantity(t *testing.T) {
	product := ambientProduct()
	catalog := &fakeCatalog{products: map[uuid.UUID]*masterModel.Product{product.ID: product}}
	ledger := newFakeLedger(catalog.products)
	ledger.addBin("A-01-01", false)

	svc := newTestInventoryService(ledger, catalog)
	receive(t, svc, product.ID, "X1", "A-01-01", "2025-01-01", 1)

	const workers = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReceiveStock(context.Background(), model.InboundRequest{
				ProductID:     product.ID,
				BatchNumber:   "X1",
				ExpiryDate:    "2025-01-01",
				MfgDate:       "2024-01-01",
				Quantity:      4,
				TargetBinCode: "A-01-01",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	batch := ledger.batches["X1"]
	bin := ledger.bins["A-01-01"]
	assert.Equal(t, 1+workers*4, ledger.stocks[stockKey(batch.ID, bin.ID)])
}
