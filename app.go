package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/folionet/casfolio/backend/internal/account"
	"github.com/folionet/casfolio/backend/internal/activity"
	"github.com/folionet/casfolio/backend/internal/cache"
	"github.com/folionet/casfolio/backend/internal/config"
	"github.com/folionet/casfolio/backend/internal/database"
	"github.com/folionet/casfolio/backend/internal/health"
	httpapi "github.com/folionet/casfolio/backend/internal/http"
	"github.com/folionet/casfolio/backend/internal/legacy"
	"github.com/folionet/casfolio/backend/internal/logger"
	"github.com/folionet/casfolio/backend/internal/migration"
	"github.com/folionet/casfolio/backend/internal/storage"
	"github.com/folionet/casfolio/backend/internal/storage/s3"
)

// App holds all application dependencies
type App struct {
	ctx       context.Context
	Config    *config.Config
	logger    logger.Logger
	db        *gorm.DB
	dbService *database.Service
	cache     cache.Service
	objects   storage.ObjectStore
	router    *gin.Engine
	responses httpapi.ResponseHandler

	accounts   *account.Repository
	activities *activity.Repository
	migration  *migration.Service
}

// NewApp creates a new application instance with all dependencies
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	dbService := database.NewService(&cfg.Database, log)
	db, err := dbService.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %v", err)
	}

	cacheService, err := cache.NewRedisService(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %v", err)
	}

	objectStore, err := s3.NewService(&cfg.Storage.S3, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %v", err)
	}

	migrationService := migration.NewService(cfg.Migration, migration.Dependencies{
		Legacy:      legacy.NewRepository(db),
		Target:      activity.NewRepository(db),
		Profiles:    account.NewRepository(db),
		Logs:        migration.NewGormLogStore(db),
		Objects:     objectStore,
		Prober:      dbService,
		Revalidator: migration.NewRevalidateClient(cfg.Migration.RevalidateURL, cfg.Migration.RevalidateTimeout),
	}, log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	app := &App{
		ctx:        ctx,
		Config:     cfg,
		logger:     log,
		db:         db,
		dbService:  dbService,
		cache:      cacheService,
		objects:    objectStore,
		router:     router,
		responses:  httpapi.NewResponseHandler(log),
		accounts:   account.NewRepository(db),
		activities: activity.NewRepository(db),
		migration:  migrationService,
	}

	app.setupRoutes()

	return app, nil
}

func (a *App) setupRoutes() {
	healthHandler := health.NewHandler(a.responses, a.dbService, a.objects, []string{
		a.Config.Migration.HeroBucket,
		a.Config.Migration.AssetBucket,
	})
	a.router.GET("/health", healthHandler.HandleHealthCheck)

	v1 := a.router.Group("/api/v1")
	{
		v1.POST("/migration/legacy", a.handleRunLegacyMigration)
		v1.GET("/migration/legacy", a.handleLegacyMigrationStatus)
		v1.GET("/activities/:id/assets/:assetId/url", a.handleAssetURL)
	}
}

// Run starts the application
func (a *App) Run() error {
	port := a.Config.Server.Port
	a.logger.LogInfo(fmt.Sprintf("Starting server on port %d", port), nil)
	if err := a.router.Run(fmt.Sprintf(":%d", port)); err != nil {
		return a.logger.LogError(err, "server failed to start")
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	a.logger.LogInfo("Initiating graceful shutdown", nil)

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.LogWarn("Error closing cache connections", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.logger.LogWarn("Error closing database connections", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	a.logger.LogInfo("Application shutdown complete", nil)
	return nil
}
