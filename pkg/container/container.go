package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"pharmacore-backend/internal/config"
	infraCache "pharmacore-backend/internal/infrastructure/cache"
	"pharmacore-backend/internal/infrastructure/database"
	"pharmacore-backend/pkg/cache"
	"pharmacore-backend/pkg/locking"

	analyticsHandler "pharmacore-backend/internal/domains/analytics/handler"
	analyticsRepo "pharmacore-backend/internal/domains/analytics/repository"
	analyticsService "pharmacore-backend/internal/domains/analytics/service"
	complianceHandler "pharmacore-backend/internal/domains/compliance/handler"
	complianceRepo "pharmacore-backend/internal/domains/compliance/repository"
	complianceService "pharmacore-backend/internal/domains/compliance/service"
	inventoryHandler "pharmacore-backend/internal/domains/inventory/handler"
	inventoryRepo "pharmacore-backend/internal/domains/inventory/repository"
	inventoryService "pharmacore-backend/internal/domains/inventory/service"
	masterHandler "pharmacore-backend/internal/domains/master/handler"
	masterRepo "pharmacore-backend/internal/domains/master/repository"
	masterService "pharmacore-backend/internal/domains/master/service"
	salesHandler "pharmacore-backend/internal/domains/sales/handler"
	salesRepo "pharmacore-backend/internal/domains/sales/repository"
	salesService "pharmacore-backend/internal/domains/sales/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// singleton wired once at startup.
type Container struct {
	// Infrastructure layer, shared across all domains.
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Guard       *locking.Guard
	AsynqClient *asynq.Client

	// Repository layer (data access).
	MasterRepo     masterRepo.RepositoryInterface
	InventoryRepo  inventoryRepo.RepositoryInterface
	SalesRepo      salesRepo.RepositoryInterface
	ComplianceRepo complianceRepo.RepositoryInterface
	AnalyticsRepo  analyticsRepo.RepositoryInterface

	// Service layer (business logic).
	MasterService     masterService.ServiceInterface
	InventoryService  inventoryService.ServiceInterface
	SalesService      salesService.ServiceInterface
	ComplianceService complianceService.ServiceInterface
	AnalyticsService  analyticsService.ServiceInterface

	// Handler layer (HTTP).
	MasterHandler     *masterHandler.Handler
	InventoryHandler  *inventoryHandler.Handler
	SalesHandler      *salesHandler.Handler
	ComplianceHandler *complianceHandler.Handler
	AnalyticsHandler  *analyticsHandler.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the whole dependency graph in order:
// config → infrastructure → repositories → services → handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// Step 1: configuration. Depends on nothing.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// Step 2: PostgreSQL.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// Step 3: Redis. Used for the live-stock cache and the asynq broker.
	// Cache failure is non-critical: the engine degrades to uncached reads.
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Cache = redisCache

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Step 4: the per-product lock manager. One instance guards all writers.
	c.Guard = locking.NewGuard()

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.MasterRepo = masterRepo.NewRepository(pool)
	c.InventoryRepo = inventoryRepo.NewRepository(pool)
	c.SalesRepo = salesRepo.NewRepository(pool)
	c.ComplianceRepo = complianceRepo.NewRepository(pool)
	c.AnalyticsRepo = analyticsRepo.NewRepository(pool)
}

func (c *Container) initServices() {
	engine := c.Config.Engine

	c.MasterService = masterService.NewService(c.MasterRepo, c.Cache)
	c.InventoryService = inventoryService.NewService(c.InventoryRepo, c.MasterRepo, c.Guard, c.Cache, engine)
	c.SalesService = salesService.NewService(c.SalesRepo, c.MasterRepo, c.Guard, c.Cache, engine)
	c.ComplianceService = complianceService.NewService(c.ComplianceRepo, c.SalesRepo, c.AsynqClient, c.Guard, c.Cache, engine)
	c.AnalyticsService = analyticsService.NewService(c.AnalyticsRepo, c.Cache, engine)
}

func (c *Container) initHandlers() {
	c.MasterHandler = masterHandler.NewHandler(c.MasterService)
	c.InventoryHandler = inventoryHandler.NewHandler(c.InventoryService)
	c.SalesHandler = salesHandler.NewHandler(c.SalesService)
	c.ComplianceHandler = complianceHandler.NewHandler(c.ComplianceService)
	c.AnalyticsHandler = analyticsHandler.NewHandler(c.AnalyticsService)
}

// Cleanup releases infrastructure resources. Called during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
