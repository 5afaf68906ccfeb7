package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	masterModel "pharmacore-backend/internal/domains/master/model"
	"pharmacore-backend/internal/domains/sales/model"
	"pharmacore-backend/internal/domains/sales/service"
	"pharmacore-backend/internal/shared/response"
	"pharmacore-backend/pkg/locking"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new sales handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// CreateOrder handles POST /sales/orders/
// A 409 means the order as a whole cannot be satisfied; nothing was
// allocated. A 503 means the allocator lost the lock race and the client
// should retry the identical request.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		switch {
		case model.IsValidationError(err):
			response.BadRequest(c, err.Error())
		case masterModel.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case errors.Is(err, model.ErrInsufficientStock):
			response.ErrorResponse(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
		case errors.Is(err, model.ErrStaleAllocation):
			response.Conflict(c, err.Error())
		case errors.Is(err, locking.ErrAcquireTimeout):
			response.ServiceBusy(c, err.Error())
		default:
			response.InternalServerError(c, "Failed to create order")
		}
		return
	}

	c.JSON(http.StatusCreated, res)
}
