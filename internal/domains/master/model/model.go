package model

import (
	"time"

	"github.com/google/uuid"
)

// Manufacturer represents the database entity for the manufacturers table.
type Manufacturer struct {
	ID            uuid.UUID `db:"id"`
	Name          string    `db:"name"`
	Address       *string   `db:"address"`
	LicenseNumber *string   `db:"license_number"` // Drug License No.
	IsActive      bool      `db:"is_active"`
}

// Product represents the database entity for the products table.
// Master data is owned by an external service; this engine only reads it.
type Product struct {
	ID          uuid.UUID `db:"id"`
	SKUCode     string    `db:"sku_code"` // e.g. PARA-500-TAB
	Name        string    `db:"name"`
	Composition *string   `db:"composition"` // e.g. Paracetamol 650mg

	ManufacturerID uuid.UUID     `db:"manufacturer_id"`
	Manufacturer   *Manufacturer `db:"-"`

	// WMS & logistics fields
	BaseUOM           string   `db:"base_uom"` // STRIP, BOTTLE, VIAL
	RequiresColdChain bool     `db:"requires_cold_chain"`
	MinTemp           *float64 `db:"min_temp"`
	MaxTemp           *float64 `db:"max_temp"` // max storage temperature, only meaningful if cold chain

	// Regulatory & ERP
	HSNCode      *string `db:"hsn_code"`      // GST tax code
	ScheduleType *string `db:"schedule_type"` // H, H1, G, X

	CreatedAt time.Time `db:"created_at"`
}
