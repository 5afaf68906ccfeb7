package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacore-backend/internal/domains/inventory/model"
	"pharmacore-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

// CreateWarehouse implements RepositoryInterface.CreateWarehouse
func (r *postgresRepository) CreateWarehouse(ctx context.Context, warehouse *model.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, location_code)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, warehouse.ID, warehouse.Name, warehouse.LocationCode)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrWarehouseAlreadyExists
		}
		return fmt.Errorf("failed to insert warehouse: %w", err)
	}

	return nil
}

// CreateBin implements RepositoryInterface.CreateBin
func (r *postgresRepository) CreateBin(ctx context.Context, bin *model.Bin) error {
	query := `
		INSERT INTO bins (id, bin_code, is_cold_storage, warehouse_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, bin.ID, bin.BinCode, bin.IsColdStorage, bin.WarehouseID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrBinAlreadyExists
		}
		return fmt.Errorf("failed to insert bin: %w", err)
	}

	return nil
}

// GetBinByCode implements RepositoryInterface.GetBinByCode
func (r *postgresRepository) GetBinByCode(ctx context.Context, binCode string) (*model.Bin, error) {
	query := `
		SELECT id, bin_code, is_cold_storage, warehouse_id
		FROM bins
		WHERE bin_code = $1
	`

	var bin model.Bin
	err := r.pool.QueryRow(ctx, query, binCode).Scan(
		&bin.ID, &bin.BinCode, &bin.IsColdStorage, &bin.WarehouseID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBinNotFoundError(binCode)
		}
		return nil, fmt.Errorf("failed to get bin: %w", err)
	}

	return &bin, nil
}

// GetBatchByNumber implements RepositoryInterface.GetBatchByNumber
func (r *postgresRepository) GetBatchByNumber(ctx context.Context, batchNumber string) (*model.Batch, error) {
	query := `
		SELECT id, batch_number, product_id, expiry_date, mfg_date, mrp, created_at
		FROM batches
		WHERE batch_number = $1
	`

	var batch model.Batch
	err := r.pool.QueryRow(ctx, query, batchNumber).Scan(
		&batch.ID, &batch.BatchNumber, &batch.ProductID,
		&batch.ExpiryDate, &batch.MfgDate, &batch.MRP, &batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBatchNotFoundError(batchNumber)
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return &batch, nil
}

// CreateBatchWithStock implements RepositoryInterface.CreateBatchWithStock
func (r *postgresRepository) CreateBatchWithStock(ctx context.Context, batch *model.Batch, binID uuid.UUID, quantity int) (int, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int, error) {
		_, err := tx.Exec(ctx, `
			INSERT INTO batches (id, batch_number, product_id, expiry_date, mfg_date, mrp, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, batch.ID, batch.BatchNumber, batch.ProductID,
			batch.ExpiryDate, batch.MfgDate, batch.MRP, batch.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on batch_number
				return 0, model.NewBatchConflictError(batch.BatchNumber, "batch_number")
			}
			return 0, fmt.Errorf("failed to insert batch: %w", err)
		}

		var newQuantity int
		err = tx.QueryRow(ctx, `
			INSERT INTO stocks (id, batch_id, bin_id, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING quantity
		`, uuid.New(), batch.ID, binID, quantity).Scan(&newQuantity)
		if err != nil {
			return 0, fmt.Errorf("failed to add stock: %w", err)
		}

		return newQuantity, nil
	})
}

// AddStock implements RepositoryInterface.AddStock
func (r *postgresRepository) AddStock(ctx context.Context, batchID, binID uuid.UUID, quantity int) (int, error) {
	query := `
		INSERT INTO stocks (id, batch_id, bin_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (batch_id, bin_id)
		DO UPDATE SET quantity = stocks.quantity + EXCLUDED.quantity
		RETURNING quantity
	`

	var newQuantity int
	err := r.pool.QueryRow(ctx, query, uuid.New(), batchID, binID, quantity).Scan(&newQuantity)
	if err != nil {
		return 0, fmt.Errorf("failed to add stock: %w", err)
	}

	return newQuantity, nil
}

// BatchHolds implements RepositoryInterface.BatchHolds
func (r *postgresRepository) BatchHolds(ctx context.Context, batchID uuid.UUID) (*model.BatchHolds, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = $1),
			EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = $1)
	`

	var holds model.BatchHolds
	if err := r.pool.QueryRow(ctx, query, batchID).Scan(&holds.Quarantined, &holds.Recalled); err != nil {
		return nil, fmt.Errorf("failed to get batch holds: %w", err)
	}

	return &holds, nil
}

// LiveStock implements RepositoryInterface.LiveStock
func (r *postgresRepository) LiveStock(ctx context.Context) ([]model.StockView, error) {
	query := `
		SELECT
			bn.bin_code, p.name, p.sku_code, b.batch_number, b.expiry_date,
			s.quantity, p.requires_cold_chain,
			EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = b.id)
				OR EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = b.id)
		FROM stocks s
		JOIN batches b ON b.id = s.batch_id
		JOIN products p ON p.id = b.product_id
		JOIN bins bn ON bn.id = s.bin_id
		WHERE s.quantity > 0
		ORDER BY bn.bin_code ASC, b.expiry_date ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query live stock: %w", err)
	}
	defer rows.Close()

	var views []model.StockView
	for rows.Next() {
		var v model.StockView
		if err := rows.Scan(
			&v.BinCode, &v.ProductName, &v.SKU, &v.BatchNumber, &v.ExpiryDate,
			&v.Quantity, &v.IsColdChain, &v.IsQuarantined,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock view: %w", err)
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

// StockInBin implements RepositoryInterface.StockInBin
func (r *postgresRepository) StockInBin(ctx context.Context, binID uuid.UUID) ([]model.BinStock, error) {
	query := `
		SELECT
			s.id, s.batch_id, b.batch_number, p.id, p.name,
			p.requires_cold_chain, p.max_temp, s.quantity,
			EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = b.id),
			EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = b.id)
		FROM stocks s
		JOIN batches b ON b.id = s.batch_id
		JOIN products p ON p.id = b.product_id
		WHERE s.bin_id = $1 AND s.quantity > 0
	`

	rows, err := r.pool.Query(ctx, query, binID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bin stock: %w", err)
	}
	defer rows.Close()

	var stocks []model.BinStock
	for rows.Next() {
		var bs model.BinStock
		if err := rows.Scan(
			&bs.StockID, &bs.BatchID, &bs.BatchNumber, &bs.ProductID, &bs.ProductName,
			&bs.RequiresColdChain, &bs.MaxTemp, &bs.Quantity,
			&bs.Quarantined, &bs.Recalled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bin stock: %w", err)
		}
		stocks = append(stocks, bs)
	}

	return stocks, rows.Err()
}

// CreateQuarantineRecords implements RepositoryInterface.CreateQuarantineRecords
func (r *postgresRepository) CreateQuarantineRecords(ctx context.Context, records []model.QuarantineRecord) error {
	if len(records) == 0 {
		return nil
	}

	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO quarantine_records (id, batch_id, bin_code, reason, temperature, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (batch_id) DO NOTHING
		`

		for _, rec := range records {
			createdAt := rec.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			if _, err := tx.Exec(ctx, query,
				rec.ID, rec.BatchID, rec.BinCode, rec.Reason, rec.Temperature, createdAt,
			); err != nil {
				return fmt.Errorf("failed to insert quarantine record: %w", err)
			}
		}
		return nil
	})
}
