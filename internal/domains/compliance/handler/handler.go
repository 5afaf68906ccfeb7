package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacore-backend/internal/domains/compliance/model"
	"pharmacore-backend/internal/domains/compliance/service"
	"pharmacore-backend/internal/shared/response"
	"pharmacore-backend/pkg/locking"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new compliance handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// TraceBatch handles GET /compliance/trace/:batch_number
func (h *Handler) TraceBatch(c *gin.Context) {
	batchNumber := c.Param("batch_number")

	res, err := h.service.TraceBatch(c.Request.Context(), batchNumber)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalServerError(c, "Failed to trace batch")
		return
	}

	c.JSON(http.StatusOK, res)
}

// InitiateRecall handles POST /compliance/recall/:batch_number
// A 503 means the recall lost the product lock race against an in-flight
// allocation and should be retried as-is.
func (h *Handler) InitiateRecall(c *gin.Context) {
	batchNumber := c.Param("batch_number")

	res, err := h.service.InitiateRecall(c.Request.Context(), batchNumber)
	if err != nil {
		switch {
		case model.IsNotFoundError(err):
			response.NotFound(c, err.Error())
		case errors.Is(err, model.ErrAlreadyRecalled):
			response.ErrorResponse(c, http.StatusConflict, "ALREADY_RECALLED", err.Error())
		case errors.Is(err, locking.ErrAcquireTimeout):
			response.ServiceBusy(c, err.Error())
		default:
			response.InternalServerError(c, "Failed to initiate recall")
		}
		return
	}

	c.JSON(http.StatusOK, res)
}
