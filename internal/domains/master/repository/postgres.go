package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacore-backend/internal/domains/master/model"
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

const productColumns = `
	p.id, p.sku_code, p.name, p.composition, p.manufacturer_id,
	p.base_uom, p.requires_cold_chain, p.min_temp, p.max_temp,
	p.hsn_code, p.schedule_type, p.created_at,
	m.id, m.name, m.address, m.license_number, m.is_active
`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var m model.Manufacturer

	err := row.Scan(
		&p.ID, &p.SKUCode, &p.Name, &p.Composition, &p.ManufacturerID,
		&p.BaseUOM, &p.RequiresColdChain, &p.MinTemp, &p.MaxTemp,
		&p.HSNCode, &p.ScheduleType, &p.CreatedAt,
		&m.ID, &m.Name, &m.Address, &m.LicenseNumber, &m.IsActive,
	)
	if err != nil {
		return nil, err
	}

	p.Manufacturer = &m
	return &p, nil
}

// GetProductByID implements RepositoryInterface.GetProductByID
func (r *postgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN manufacturers m ON m.id = p.manufacturer_id
		WHERE p.id = $1
	`, productColumns)

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewProductNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListProducts implements RepositoryInterface.ListProducts
func (r *postgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN manufacturers m ON m.id = p.manufacturer_id
		ORDER BY p.name ASC
	`, productColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// ListManufacturers implements RepositoryInterface.ListManufacturers
func (r *postgresRepository) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	query := `
		SELECT id, name, address, license_number, is_active
		FROM manufacturers
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}
	defer rows.Close()

	var manufacturers []model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.LicenseNumber, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan manufacturer: %w", err)
		}
		manufacturers = append(manufacturers, m)
	}

	return manufacturers, rows.Err()
}
