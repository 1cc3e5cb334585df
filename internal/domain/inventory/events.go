package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockLevel = "StockLevel"

// Event type constants
const (
	EventTypeStockIncreased      = "StockIncreased"
	EventTypeStockDecreased      = "StockDecreased"
	EventTypeStockAdjusted       = "StockAdjusted"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// StockIncreasedEvent is raised when stock is received into a warehouse
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// NewStockIncreasedEvent creates a new StockIncreasedEvent
func NewStockIncreasedEvent(level *StockLevel, quantity, unitCost decimal.Decimal) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, AggregateTypeStockLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Quantity:        quantity,
		UnitCost:        unitCost,
	}
}

// EventType returns the event type name
func (e *StockIncreasedEvent) EventType() string {
	return EventTypeStockIncreased
}

// StockDecreasedEvent is raised when stock is consumed or shipped
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(level *StockLevel, quantity decimal.Decimal) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeStockLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Quantity:        quantity,
		Remaining:       level.Quantity,
	}
}

// EventType returns the event type name
func (e *StockDecreasedEvent) EventType() string {
	return EventTypeStockDecreased
}

// StockAdjustedEvent is raised when stock is corrected to a counted value
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Difference  decimal.Decimal `json:"difference"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(level *StockLevel, difference decimal.Decimal) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Difference:      difference,
		NewQuantity:     level.Quantity,
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// StockBelowThresholdEvent is raised when on-hand quantity falls to or
// below the effective reorder threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID       `json:"product_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	MinStockAlert   decimal.Decimal `json:"min_stock_alert"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(level *StockLevel) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStockLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		CurrentQuantity: level.Quantity,
		MinStockAlert:   level.MinStockAlert,
		ReorderPoint:    level.ReorderPoint,
	}
}

// EventType returns the event type name
func (e *StockBelowThresholdEvent) EventType() string {
	return EventTypeStockBelowThreshold
}
