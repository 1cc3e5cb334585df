package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrp/backend/internal/interfaces/http/handler"
	"github.com/mrp/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers the router wires up
type Handlers struct {
	Stock         *handler.StockHandler
	Replenishment *handler.ReplenishmentHandler
	System        *handler.SystemHandler
}

// New builds the gin engine with middleware and all routes registered
func New(handlers Handlers, logger *zap.Logger, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Actor(),
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
	)

	engine.GET("/healthz", handlers.System.Health)
	engine.GET("/readyz", handlers.System.Ready)

	v1 := engine.Group("/api/v1")
	{
		stock := v1.Group("/stock")
		{
			stock.POST("/lots", handlers.Stock.CreateLot)
			stock.POST("/lots/:lot_id/quarantine", handlers.Stock.QuarantineLot)
			stock.POST("/lots/:lot_id/release", handlers.Stock.ReleaseLot)
			stock.POST("/consume", handlers.Stock.Consume)
			stock.POST("/adjust", handlers.Stock.Adjust)
			stock.POST("/recompute", handlers.Stock.Recompute)
			stock.PUT("/thresholds", handlers.Stock.SetThresholds)
			stock.GET("/movements", handlers.Stock.ListMovements)
		}

		warehouses := v1.Group("/warehouses/:warehouse_id/products/:product_id")
		{
			warehouses.GET("/stock", handlers.Stock.GetStockLevel)
			warehouses.GET("/lots", handlers.Stock.ListLots)
		}

		replenishment := v1.Group("/replenishment")
		{
			replenishment.POST("/scan", handlers.Replenishment.Scan)
			replenishment.GET("/suggestions", handlers.Replenishment.List)
			replenishment.GET("/suggestions/:id", handlers.Replenishment.Get)
			replenishment.POST("/suggestions/:id/approve", handlers.Replenishment.Approve)
			replenishment.POST("/suggestions/:id/reject", handlers.Replenishment.Reject)
		}
	}

	return engine
}
