package model

import (
	"time"

	"github.com/google/uuid"
)

// Insight severities
const (
	InsightCritical = "CRITICAL"
	InsightWarning  = "WARNING"
	InsightInfo     = "INFO"
)

// Insight is one actionable finding for the operations dashboard.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Metric  string `json:"metric"`
}

// ExpiringBatch is a batch with sellable stock approaching its expiry date.
// Quarantined and recalled batches are excluded; their units are already
// lost to compliance, not to the calendar.
type ExpiringBatch struct {
	BatchNumber string
	ProductName string
	ExpiryDate  time.Time
	Quantity    int
}

// ProductSummary aggregates a product's sellable stock and lifetime sales.
type ProductSummary struct {
	ProductID  uuid.UUID
	Name       string
	TotalStock int
	TotalSold  int
}
