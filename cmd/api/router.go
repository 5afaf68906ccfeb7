package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacore-backend/internal/shared/middleware"
	"pharmacore-backend/pkg/container"
)

// SetupRouter wires the HTTP surface. Contract routes are mounted at the
// root, exactly as the front end calls them. Mutating routes require a
// bearer token minted by the external gateway.
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	router.GET("/health", healthCheckHandler(c))

	setupMasterRoutes(router, c)
	setupInventoryRoutes(router, c)
	setupSalesRoutes(router, c)
	setupComplianceRoutes(router, c)
	setupAnalyticsRoutes(router, c)

	return router
}

// ========================================
// MASTER DATA ROUTES (read-only catalog)
// ========================================
func setupMasterRoutes(r *gin.Engine, c *container.Container) {
	master := r.Group("/master")
	{
		master.GET("/products/", c.MasterHandler.ListProducts)
		master.GET("/manufacturers/", c.MasterHandler.ListManufacturers)
	}
}

// ========================================
// INVENTORY ROUTES
// ========================================
func setupInventoryRoutes(r *gin.Engine, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.Auth.JWTSecret)

	inventory := r.Group("/inventory")
	{
		inventory.GET("/stock/live/", c.InventoryHandler.GetLiveStock)
		inventory.POST("/inbound/receive/", auth, c.InventoryHandler.ReceiveStock)
		// Telemetry is posted by the sensor gateway with its own service token.
		inventory.POST("/telemetry/", auth, c.InventoryHandler.IngestTelemetry)
		inventory.POST("/warehouses/", auth, c.InventoryHandler.CreateWarehouse)
		inventory.POST("/bins/", auth, c.InventoryHandler.CreateBin)
	}
}

// ========================================
// SALES ROUTES
// ========================================
func setupSalesRoutes(r *gin.Engine, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.Auth.JWTSecret)

	sales := r.Group("/sales")
	{
		sales.POST("/orders/", auth, c.SalesHandler.CreateOrder)
	}
}

// ========================================
// COMPLIANCE ROUTES
// ========================================
func setupComplianceRoutes(r *gin.Engine, c *container.Container) {
	auth := middleware.AuthMiddleware(c.Config.Auth.JWTSecret)

	compliance := r.Group("/compliance")
	{
		compliance.GET("/trace/:batch_number", c.ComplianceHandler.TraceBatch)
		// Recall is a manager action.
		compliance.POST("/recall/:batch_number",
			auth,
			middleware.RequireRoles("ADMIN", "MANAGER"),
			c.ComplianceHandler.InitiateRecall,
		)
	}
}

// ========================================
// ANALYTICS ROUTES
// ========================================
func setupAnalyticsRoutes(r *gin.Engine, c *container.Container) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("/insights/", c.AnalyticsHandler.GetInsights)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}
		services := gin.H{}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "unhealthy"
				health["status"] = "degraded"
			}
		}
		services["database"] = dbStatus

		cacheStatus := "ok"
		if appCtx.Cache == nil {
			cacheStatus = "disconnected"
		} else if err := appCtx.Cache.Ping(c.Request.Context()); err != nil {
			// Degraded cache is survivable; reads fall through to Postgres.
			cacheStatus = "unhealthy"
		}
		services["cache"] = cacheStatus

		health["services"] = services

		status := http.StatusOK
		if health["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
}
