package replenishment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/shared"
)

// LowStockHandler reacts to StockBelowThreshold events by kicking off a
// targeted replenishment scan for the affected warehouse. The scan itself is
// idempotent, so reacting to every event is safe.
type LowStockHandler struct {
	logger  *zap.Logger
	service *ReplenishmentService
}

// NewLowStockHandler creates a new handler for stock below threshold events
func NewLowStockHandler(logger *zap.Logger, service *ReplenishmentService) *LowStockHandler {
	return &LowStockHandler{
		logger:  logger,
		service: service,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowThreshold),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("product_id", thresholdEvent.ProductID.String()),
		zap.String("warehouse_id", thresholdEvent.WarehouseID.String()),
		zap.String("current_quantity", thresholdEvent.CurrentQuantity.String()),
		zap.String("min_stock_alert", thresholdEvent.MinStockAlert.String()),
		zap.String("reorder_point", thresholdEvent.ReorderPoint.String()),
	)

	warehouseID := thresholdEvent.WarehouseID
	result, err := h.service.GenerateSuggestions(ctx, GenerateRequest{WarehouseID: &warehouseID})
	if err != nil {
		h.logger.Error("replenishment scan after low stock event failed",
			zap.String("warehouse_id", warehouseID.String()),
			zap.Error(err),
		)
		return err
	}

	if result.Created > 0 {
		h.logger.Info("replenishment suggestions created from low stock event",
			zap.String("warehouse_id", warehouseID.String()),
			zap.Int("created", result.Created),
		)
	}
	return nil
}

// Ensure LowStockHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockHandler)(nil)
