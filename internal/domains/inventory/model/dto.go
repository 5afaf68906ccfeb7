package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for expiry/mfg dates.
const DateLayout = "2006-01-02"

// =====================================================
// REQUEST DTOs
// =====================================================

// InboundRequest is the payload when goods arrive at the dock: the batch
// identity plus where the operator put it.
type InboundRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber   string          `json:"batch_number" binding:"required"`
	ExpiryDate    string          `json:"expiry_date" binding:"required"`
	MfgDate       string          `json:"mfg_date" binding:"required"`
	MRP           decimal.Decimal `json:"mrp"`
	Quantity      int             `json:"quantity" binding:"required"`
	TargetBinCode string          `json:"target_bin_code" binding:"required"`
}

// Validate validates InboundRequest
func (req InboundRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BatchNumber, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.TargetBinCode, validation.Required, validation.Length(1, 32)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1).ErrorObject(
			validation.NewError("validation_min_quantity", ErrInvalidQuantity.Error()))),
		validation.Field(&req.ExpiryDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&req.MfgDate, validation.Required, validation.Date(DateLayout)),
	)
}

// ParseDates returns (expiry, mfg) and enforces expiry > mfg.
func (req InboundRequest) ParseDates() (time.Time, time.Time, error) {
	expiry, err := time.Parse(DateLayout, req.ExpiryDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid expiry_date: %w", err)
	}
	mfg, err := time.Parse(DateLayout, req.MfgDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid mfg_date: %w", err)
	}
	if !expiry.After(mfg) {
		return time.Time{}, time.Time{}, ErrInvalidExpiry
	}
	return expiry, mfg, nil
}

// TelemetryRequest is one sensor reading for a bin.
// Temperature is a pointer so a literal 0.0 survives binding.
type TelemetryRequest struct {
	BinCode     string   `json:"bin_code" binding:"required"`
	Temperature *float64 `json:"temperature" binding:"required"`
}

// Validate validates TelemetryRequest. A reading the sensor cannot physically
// produce is a hard input error, never silently dropped.
func (req TelemetryRequest) Validate() error {
	if req.Temperature == nil {
		return validation.Errors{"temperature": validation.ErrRequired}
	}
	if *req.Temperature < -80 || *req.Temperature > 100 {
		return fmt.Errorf("%w: %.1f", ErrInvalidTemperature, *req.Temperature)
	}
	return nil
}

type CreateWarehouseRequest struct {
	Name         string `json:"name" binding:"required"`
	LocationCode string `json:"location_code" binding:"required"`
}

type CreateBinRequest struct {
	BinCode       string    `json:"bin_code" binding:"required"`
	IsColdStorage bool      `json:"is_cold_storage"`
	WarehouseID   uuid.UUID `json:"warehouse_id" binding:"required"`
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type ReceiveResponse struct {
	Status      string `json:"status"`
	BatchNumber string `json:"batch_number"`
	Bin         string `json:"bin"`
	NewQuantity int    `json:"new_quantity"`
}

// TelemetryResponse statuses
const (
	TelemetryStatusOK    = "OK"
	TelemetryStatusAlert = "ALERT"
)

type TelemetryResponse struct {
	Status  string   `json:"status"`
	Batches []string `json:"batches"`
}

// StockViewResponse is one row of GET /inventory/stock/live/
type StockViewResponse struct {
	BinCode       string `json:"bin_code"`
	ProductName   string `json:"product_name"`
	SKU           string `json:"sku"`
	BatchNumber   string `json:"batch_number"`
	ExpiryDate    string `json:"expiry_date"`
	Quantity      int    `json:"quantity"`
	IsColdChain   bool   `json:"is_cold_chain"`
	IsQuarantined bool   `json:"is_quarantined"`
}

func (v StockView) ToResponse() StockViewResponse {
	return StockViewResponse{
		BinCode:       v.BinCode,
		ProductName:   v.ProductName,
		SKU:           v.SKU,
		BatchNumber:   v.BatchNumber,
		ExpiryDate:    v.ExpiryDate.Format(DateLayout),
		Quantity:      v.Quantity,
		IsColdChain:   v.IsColdChain,
		IsQuarantined: v.IsQuarantined,
	}
}

func ToStockViewResponseList(views []StockView) []StockViewResponse {
	out := make([]StockViewResponse, 0, len(views))
	for i := range views {
		out = append(out, views[i].ToResponse())
	}
	return out
}
