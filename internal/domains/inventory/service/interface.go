package service

import (
	"context"

	"pharmacore-backend/internal/domains/inventory/model"
)

type ServiceInterface interface {
	ReceiveStock(ctx context.Context, req model.InboundRequest) (*model.ReceiveResponse, error)
	GetLiveStock(ctx context.Context) ([]model.StockViewResponse, error)
	IngestTelemetry(ctx context.Context, req model.TelemetryRequest) (*model.TelemetryResponse, error)
	CreateWarehouse(ctx context.Context, req model.CreateWarehouseRequest) (*model.Warehouse, error)
	CreateBin(ctx context.Context, req model.CreateBinRequest) (*model.Bin, error)
}
