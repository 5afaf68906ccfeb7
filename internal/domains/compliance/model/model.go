package model

import (
	"time"

	"github.com/google/uuid"
)

// BatchFacts is the traced batch joined with its product.
type BatchFacts struct {
	BatchID     uuid.UUID
	BatchNumber string
	ProductID   uuid.UUID
	ProductName string
	ExpiryDate  time.Time
	MfgDate     time.Time
}

// Location is one bin still holding quantity of the traced batch.
type Location struct {
	BinCode  string
	Quantity int
}

// RecallRecord marks a batch terminally recalled. One row per batch, ever;
// the unique constraint on batch_id is the idempotency key for the whole
// recall flow.
type RecallRecord struct {
	ID                uuid.UUID `db:"id"`
	BatchID           uuid.UUID `db:"batch_id"`
	NotifiedCustomers []string  `db:"notified_customers"`
	NotifiedCount     int       `db:"notified_count"`
	CreatedAt         time.Time `db:"created_at"`
}
