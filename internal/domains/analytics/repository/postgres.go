package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacore-backend/internal/domains/analytics/model"
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

// ExpiringBatches implements RepositoryInterface.ExpiringBatches
func (r *postgresRepository) ExpiringBatches(ctx context.Context, before time.Time) ([]model.ExpiringBatch, error) {
	query := `
		SELECT b.batch_number, p.name, b.expiry_date, SUM(s.quantity)
		FROM stocks s
		JOIN batches b ON b.id = s.batch_id
		JOIN products p ON p.id = b.product_id
		WHERE s.quantity > 0
		  AND b.expiry_date < $1
		  AND NOT EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = b.id)
		  AND NOT EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = b.id)
		GROUP BY b.batch_number, p.name, b.expiry_date
		ORDER BY b.expiry_date ASC
	`

	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring batches: %w", err)
	}
	defer rows.Close()

	var batches []model.ExpiringBatch
	for rows.Next() {
		var b model.ExpiringBatch
		if err := rows.Scan(&b.BatchNumber, &b.ProductName, &b.ExpiryDate, &b.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan expiring batch: %w", err)
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}

// ProductSummaries implements RepositoryInterface.ProductSummaries
func (r *postgresRepository) ProductSummaries(ctx context.Context) ([]model.ProductSummary, error) {
	query := `
		SELECT p.id, p.name,
		       COALESCE((
		           SELECT SUM(s.quantity)
		           FROM stocks s
		           JOIN batches b ON b.id = s.batch_id
		           WHERE b.product_id = p.id
		             AND NOT EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = b.id)
		             AND NOT EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = b.id)
		       ), 0) AS total_stock,
		       COALESCE((
		           SELECT SUM(i.quantity)
		           FROM sales_order_items i
		           WHERE i.product_id = p.id
		       ), 0) AS total_sold
		FROM products p
		ORDER BY p.name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product summaries: %w", err)
	}
	defer rows.Close()

	var summaries []model.ProductSummary
	for rows.Next() {
		var s model.ProductSummary
		if err := rows.Scan(&s.ProductID, &s.Name, &s.TotalStock, &s.TotalSold); err != nil {
			return nil, fmt.Errorf("failed to scan product summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
