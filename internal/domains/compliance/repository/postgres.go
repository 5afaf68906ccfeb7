package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacore-backend/internal/domains/compliance/model"
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

// GetBatchFacts implements RepositoryInterface.GetBatchFacts
func (r *postgresRepository) GetBatchFacts(ctx context.Context, batchNumber string) (*model.BatchFacts, error) {
	query := `
		SELECT b.id, b.batch_number, b.product_id, p.name, b.expiry_date, b.mfg_date
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.batch_number = $1
	`

	var facts model.BatchFacts
	err := r.pool.QueryRow(ctx, query, batchNumber).Scan(
		&facts.BatchID, &facts.BatchNumber, &facts.ProductID, &facts.ProductName,
		&facts.ExpiryDate, &facts.MfgDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBatchNotFoundError(batchNumber)
		}
		return nil, fmt.Errorf("failed to get batch facts: %w", err)
	}

	return &facts, nil
}

// CurrentLocations implements RepositoryInterface.CurrentLocations
func (r *postgresRepository) CurrentLocations(ctx context.Context, batchID uuid.UUID) ([]model.Location, error) {
	query := `
		SELECT bn.bin_code, s.quantity
		FROM stocks s
		JOIN bins bn ON bn.id = s.bin_id
		WHERE s.batch_id = $1 AND s.quantity > 0
		ORDER BY bn.bin_code ASC
	`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query current locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.BinCode, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}

	return locations, rows.Err()
}

// CreateRecall implements RepositoryInterface.CreateRecall
func (r *postgresRepository) CreateRecall(ctx context.Context, record *model.RecallRecord) error {
	query := `
		INSERT INTO recall_records (id, batch_id, notified_customers, notified_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID, record.BatchID, record.NotifiedCustomers, record.NotifiedCount, record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: batch_id=%s", model.ErrAlreadyRecalled, record.BatchID)
		}
		return fmt.Errorf("failed to create recall record: %w", err)
	}

	return nil
}
