package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacore-backend/internal/domains/sales/model"
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

// EligibleStock implements RepositoryInterface.EligibleStock
func (r *postgresRepository) EligibleStock(ctx context.Context, productID uuid.UUID) ([]model.EligibleStock, error) {
	query := `
		SELECT s.id, s.batch_id, b.batch_number, s.bin_id, bn.bin_code, b.expiry_date, s.quantity
		FROM stocks s
		JOIN batches b ON b.id = s.batch_id
		JOIN bins bn ON bn.id = s.bin_id
		WHERE b.product_id = $1
		  AND s.quantity > 0
		  AND NOT EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = s.batch_id)
		  AND NOT EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = s.batch_id)
		ORDER BY b.expiry_date ASC, bn.bin_code ASC
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible stock: %w", err)
	}
	defer rows.Close()

	var eligible []model.EligibleStock
	for rows.Next() {
		var e model.EligibleStock
		if err := rows.Scan(
			&e.StockID, &e.BatchID, &e.BatchNumber, &e.BinID, &e.BinCode, &e.ExpiryDate, &e.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan eligible stock: %w", err)
		}
		eligible = append(eligible, e)
	}

	return eligible, rows.Err()
}

// CommitAllocation implements RepositoryInterface.CommitAllocation
func (r *postgresRepository) CommitAllocation(ctx context.Context, order *model.SalesOrder) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sales_orders (id, customer_name, status, total_amount, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, order.CustomerName, order.Status, order.TotalAmount, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert sales order: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO sales_order_items (id, order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
			`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		for _, d := range order.Dispatches {
			// Conditional decrement re-validates the plan: quantity can never
			// go negative, and a quarantine or recall recorded after planning
			// fails the order instead of dispatching held stock.
			tag, err := tx.Exec(ctx, `
				UPDATE stocks
				SET quantity = quantity - $1
				WHERE id = $2 AND quantity >= $1
				  AND NOT EXISTS (SELECT 1 FROM quarantine_records q WHERE q.batch_id = $3)
				  AND NOT EXISTS (SELECT 1 FROM recall_records rec WHERE rec.batch_id = $3)
			`, d.Quantity, d.StockID, d.BatchID)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: batch=%s, bin=%s", model.ErrStaleAllocation, d.BatchNumber, d.BinCode)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO dispatches (id, order_id, batch_id, bin_id, customer_name, quantity, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, d.ID, d.OrderID, d.BatchID, d.BinID, d.CustomerName, d.Quantity, d.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert dispatch record: %w", err)
			}
		}

		return nil
	})
}

// DispatchTrail implements RepositoryInterface.DispatchTrail
func (r *postgresRepository) DispatchTrail(ctx context.Context, batchID uuid.UUID) ([]model.DispatchRecord, error) {
	query := `
		SELECT d.id, d.order_id, d.batch_id, b.batch_number, d.bin_id, bn.bin_code,
		       d.customer_name, d.quantity, d.created_at
		FROM dispatches d
		JOIN batches b ON b.id = d.batch_id
		JOIN bins bn ON bn.id = d.bin_id
		WHERE d.batch_id = $1
		ORDER BY d.created_at DESC, d.id DESC
	`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatch trail: %w", err)
	}
	defer rows.Close()

	var trail []model.DispatchRecord
	for rows.Next() {
		var d model.DispatchRecord
		if err := rows.Scan(
			&d.ID, &d.OrderID, &d.BatchID, &d.BatchNumber, &d.BinID, &d.BinCode,
			&d.CustomerName, &d.Quantity, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		trail = append(trail, d)
	}

	return trail, rows.Err()
}
