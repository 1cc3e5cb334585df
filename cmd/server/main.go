package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	stockapp "github.com/mrp/backend/internal/application/inventory"
	replapp "github.com/mrp/backend/internal/application/replenishment"
	"github.com/mrp/backend/internal/infrastructure/cache"
	"github.com/mrp/backend/internal/infrastructure/config"
	"github.com/mrp/backend/internal/infrastructure/event"
	"github.com/mrp/backend/internal/infrastructure/logger"
	"github.com/mrp/backend/internal/infrastructure/persistence"
	"github.com/mrp/backend/internal/infrastructure/scheduler"
	"github.com/mrp/backend/internal/interfaces/http/handler"
	"github.com/mrp/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting MRP Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Optional Redis cache for stock level reads
	redisClient, err := cache.NewRedisClient(context.Background(), &cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}
	levelCache := cache.NewStockLevelCache(redisClient, cfg.Redis.CacheTTL, log)

	// Initialize repositories
	levelRepo := persistence.NewGormStockLevelRepository(db.DB())
	lotRepo := persistence.NewGormStockLotRepository(db.DB())
	movementRepo := persistence.NewGormMovementRepository(db.DB())
	suggestionRepo := persistence.NewGormSuggestionRepository(db.DB())

	inventoryTxScope := persistence.NewGormInventoryTransactionScope(db.DB())
	replenishmentTxScope := persistence.NewGormReplenishmentTransactionScope(db.DB())

	// Initialize application services
	stockService := stockapp.NewStockService(inventoryTxScope, levelRepo, lotRepo, movementRepo, log)
	replenishmentService := replapp.NewReplenishmentService(replenishmentTxScope, suggestionRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Stock dropping below its reorder threshold triggers a targeted scan
	lowStockHandler := replapp.NewLowStockHandler(log, replenishmentService)
	eventBus.Subscribe(lowStockHandler)
	log.Info("Event handlers registered",
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	stockService.SetEventPublisher(eventBus)
	replenishmentService.SetEventPublisher(eventBus)

	// Periodic threshold scan
	replenishmentScheduler := scheduler.NewReplenishmentScheduler(replenishmentService, &cfg.Replenishment, log)
	replenishmentScheduler.Start(context.Background())
	defer replenishmentScheduler.Stop()
	if cfg.Replenishment.ScanEnabled {
		log.Info("Replenishment scheduler started",
			zap.Duration("scan_interval", cfg.Replenishment.ScanInterval),
		)
	}

	// Initialize HTTP handlers and router
	handlers := router.Handlers{
		Stock:         handler.NewStockHandler(stockService, levelCache),
		Replenishment: handler.NewReplenishmentHandler(replenishmentService),
		System:        handler.NewSystemHandler(db, cfg.App.Name, version),
	}
	engine := router.New(handlers, log, cfg.App.Env)

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
