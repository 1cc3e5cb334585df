package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/inventory"
)

// CreateLotRequest represents a request to receive stock as a new lot
type CreateLotRequest struct {
	LotNumber        string          `json:"lot_number" binding:"required,min=1,max=50"`
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID      uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	Unit             string          `json:"unit" binding:"required,unitcode"`
	UnitCost         decimal.Decimal `json:"unit_cost" binding:"required"`
	ReceivedAt       *time.Time      `json:"received_at"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	ReferenceType    string          `json:"reference_type"`
	ReferenceID      string          `json:"reference_id"`
	AllowUnconverted bool            `json:"allow_unconverted"`
}

// ConsumeStockRequest represents a request to consume stock FIFO across lots
type ConsumeStockRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Unit          string          `json:"unit" binding:"omitempty,unitcode"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
}

// LotHoldRequest carries the optional reason for a lot quarantine or release
type LotHoldRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// AdjustStockRequest represents a stock count correction
type AdjustStockRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID    uuid.UUID       `json:"warehouse_id" binding:"required"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Reason         string          `json:"reason" binding:"required,min=1,max=255"`
}

// RecomputeRequest asks for a stock level to be rebuilt from its lots
type RecomputeRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
}

// SetThresholdsRequest updates the replenishment thresholds of a stock level
type SetThresholdsRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID     uuid.UUID       `json:"warehouse_id" binding:"required"`
	MinStockAlert   decimal.Decimal `json:"min_stock_alert"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	MinStockAlert     decimal.Decimal `json:"min_stock_alert"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	ReorderQuantity   decimal.Decimal `json:"reorder_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	CanonicalUnit     string          `json:"canonical_unit"`
	LotTracked        bool            `json:"lot_tracked"`
	NeedsReorder      bool            `json:"needs_reorder"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToStockLevelResponse converts a StockLevel to its response form
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ID:                level.ID,
		ProductID:         level.ProductID,
		WarehouseID:       level.WarehouseID,
		Quantity:          level.Quantity,
		ReservedQuantity:  level.ReservedQuantity,
		AvailableQuantity: level.AvailableQuantity(),
		MinStockAlert:     level.MinStockAlert,
		ReorderPoint:      level.ReorderPoint,
		ReorderQuantity:   level.ReorderQuantity,
		TotalValue:        level.TotalValue,
		CanonicalUnit:     level.CanonicalUnit,
		LotTracked:        level.LotTracked,
		NeedsReorder:      level.NeedsReorder(),
		UpdatedAt:         level.UpdatedAt,
		Version:           level.Version,
	}
}

// LotResponse represents a stock lot in API responses
type LotResponse struct {
	ID                uuid.UUID       `json:"id"`
	LotNumber         string          `json:"lot_number"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	InitialQuantity   decimal.Decimal `json:"initial_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Unit              string          `json:"unit"`
	Status            string          `json:"status"`
	ReceivedAt        time.Time       `json:"received_at"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
}

// ToLotResponse converts a StockLot to its response form
func ToLotResponse(lot *inventory.StockLot) LotResponse {
	return LotResponse{
		ID:                lot.ID,
		LotNumber:         lot.LotNumber,
		ProductID:         lot.ProductID,
		WarehouseID:       lot.WarehouseID,
		InitialQuantity:   lot.InitialQuantity,
		RemainingQuantity: lot.RemainingQuantity,
		UnitCost:          lot.UnitCost,
		Unit:              lot.Unit,
		Status:            string(lot.Status),
		ReceivedAt:        lot.ReceivedAt,
		ExpiryDate:        lot.ExpiryDate,
	}
}

// ConsumeStockResponse reports how a consumption was allocated across lots
type ConsumeStockResponse struct {
	ProductID           uuid.UUID             `json:"product_id"`
	WarehouseID         uuid.UUID             `json:"warehouse_id"`
	TotalQuantity       decimal.Decimal       `json:"total_quantity"`
	TotalCost           decimal.Decimal       `json:"total_cost"`
	WeightedAverageCost decimal.Decimal       `json:"weighted_average_cost"`
	Consumptions        []LotConsumptionEntry `json:"consumptions"`
	RemainingQuantity   decimal.Decimal       `json:"remaining_quantity"`
}

// LotConsumptionEntry is a single lot's share of a consumption
type LotConsumptionEntry struct {
	LotID         uuid.UUID       `json:"lot_id"`
	LotNumber     string          `json:"lot_number"`
	QuantityTaken decimal.Decimal `json:"quantity_taken"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Depleted      bool            `json:"depleted"`
}

// AdjustStockResponse reports the result of a stock count correction
type AdjustStockResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Difference  decimal.Decimal `json:"difference"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// RecomputeResponse reports the drift repaired by a recompute
type RecomputeResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Drift       decimal.Decimal `json:"drift"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// MovementListFilter represents filter options for the movement ledger
type MovementListFilter struct {
	ProductID   *uuid.UUID `form:"product_id"`
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	LotNumber   string     `form:"lot_number"`
	Type        string     `form:"type"`
	Since       *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MovementResponse represents a ledger record in API responses
type MovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	LotNumber      string          `json:"lot_number,omitempty"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	PerformedBy    string          `json:"performed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToMovementResponse converts a Movement to its response form
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		UnitCost:       m.UnitCost,
		LotNumber:      m.LotNumber,
		ReferenceType:  string(m.ReferenceType),
		ReferenceID:    m.ReferenceID,
		PerformedBy:    m.PerformedBy,
		CreatedAt:      m.CreatedAt,
	}
}
