package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacore-backend/internal/domains/analytics/service"
	"pharmacore-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new analytics handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// GetInsights handles GET /analytics/insights/
func (h *Handler) GetInsights(c *gin.Context) {
	insights, err := h.service.GetInsights(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "Failed to build insights")
		return
	}

	c.JSON(http.StatusOK, insights)
}
