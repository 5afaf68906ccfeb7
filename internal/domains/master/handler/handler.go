package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacore-backend/internal/domains/master/service"
	"pharmacore-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new master data handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// ListProducts handles GET /master/products/
// Returns the catalog shape the front end consumes: a bare array.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// ListManufacturers handles GET /master/manufacturers/
func (h *Handler) ListManufacturers(c *gin.Context) {
	manufacturers, err := h.service.ListManufacturers(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "Failed to list manufacturers")
		return
	}

	c.JSON(http.StatusOK, manufacturers)
}
