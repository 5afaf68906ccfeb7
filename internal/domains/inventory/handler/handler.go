package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacore-backend/internal/domains/inventory/model"
	"pharmacore-backend/internal/domains/inventory/service"
	masterModel "pharmacore-backend/internal/domains/master/model"
	"pharmacore-backend/internal/shared/response"
	"pharmacore-backend/pkg/locking"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new inventory handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// ReceiveStock handles POST /inventory/inbound/receive/
func (h *Handler) ReceiveStock(c *gin.Context) {
	var req model.InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.ReceiveStock(c.Request.Context(), req)
	if err != nil {
		switch {
		case model.IsValidationError(err):
			response.BadRequest(c, err.Error())
		case model.IsNotFoundError(err), masterModel.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case errors.Is(err, model.ErrBatchConflict):
			response.Conflict(c, err.Error())
		case errors.Is(err, model.ErrBatchOnHold):
			response.ErrorResponse(c, http.StatusConflict, "STATE_ERROR", err.Error())
		case errors.Is(err, locking.ErrAcquireTimeout):
			response.ServiceBusy(c, err.Error())
		default:
			response.InternalServerError(c, "Failed to receive stock")
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetLiveStock handles GET /inventory/stock/live/
func (h *Handler) GetLiveStock(c *gin.Context) {
	views, err := h.service.GetLiveStock(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "Failed to get live stock")
		return
	}

	c.JSON(http.StatusOK, views)
}

// IngestTelemetry handles POST /inventory/telemetry/
// An unparseable reading or unknown bin is a hard input error surfaced to the
// sensor gateway; a dropped breach reading would be a safety failure.
func (h *Handler) IngestTelemetry(c *gin.Context) {
	var req model.TelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.IngestTelemetry(c.Request.Context(), req)
	if err != nil {
		switch {
		case model.IsValidationError(err):
			response.BadRequest(c, err.Error())
		case model.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case errors.Is(err, locking.ErrAcquireTimeout):
			response.ServiceBusy(c, err.Error())
		default:
			response.InternalServerError(c, "Failed to ingest telemetry")
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// CreateWarehouse handles POST /inventory/warehouses/
func (h *Handler) CreateWarehouse(c *gin.Context) {
	var req model.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	warehouse, err := h.service.CreateWarehouse(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrWarehouseAlreadyExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalServerError(c, "Failed to create warehouse")
		return
	}

	response.Success(c, http.StatusCreated, warehouse)
}

// CreateBin handles POST /inventory/bins/
func (h *Handler) CreateBin(c *gin.Context) {
	var req model.CreateBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bin, err := h.service.CreateBin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrBinAlreadyExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalServerError(c, "Failed to create bin")
		return
	}

	response.Success(c, http.StatusCreated, bin)
}
