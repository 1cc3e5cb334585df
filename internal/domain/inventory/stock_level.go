package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// StockLevel is the aggregate view of on-hand stock at a specific warehouse
// for a specific product. The composite identifier is ProductID +
// WarehouseID. For lot-tracked products its quantity is kept equal to the
// sum of the remaining quantities of the product's available lots.
type StockLevel struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_warehouse,priority:1"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_warehouse,priority:2"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStockAlert    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderPoint     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastUnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CanonicalUnit    string          `gorm:"type:varchar(20);not null;default:'PCS'"`
	LotTracked       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zeroed stock level for a product-warehouse pair
func NewStockLevel(productID, warehouseID uuid.UUID, canonicalUnit string, lotTracked bool) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if canonicalUnit == "" {
		canonicalUnit = "PCS"
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		MinStockAlert:     decimal.Zero,
		ReorderPoint:      decimal.Zero,
		ReorderQuantity:   decimal.Zero,
		TotalValue:        decimal.Zero,
		LastUnitCost:      decimal.Zero,
		CanonicalUnit:     canonicalUnit,
		LotTracked:        lotTracked,
	}, nil
}

// AvailableQuantity returns quantity minus reserved
func (s *StockLevel) AvailableQuantity() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// ReorderThreshold returns the effective threshold below which
// replenishment should be considered
func (s *StockLevel) ReorderThreshold() decimal.Decimal {
	return decimal.Max(s.ReorderPoint, s.MinStockAlert)
}

// NeedsReorder returns true if on-hand quantity is at or below the
// effective reorder threshold
func (s *StockLevel) NeedsReorder() bool {
	threshold := s.ReorderThreshold()
	return threshold.GreaterThan(decimal.Zero) && s.Quantity.LessThanOrEqual(threshold)
}

// Increase adds received quantity to the aggregate and tracks value
func (s *StockLevel) Increase(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	s.Quantity = s.Quantity.Add(quantity)
	s.TotalValue = s.TotalValue.Add(quantity.Mul(unitCost))
	s.LastUnitCost = unitCost
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockIncreasedEvent(s, quantity, unitCost))
	return nil
}

// Decrease removes consumed quantity from the aggregate. Consumption draws
// only from the unreserved portion; the aggregate never goes negative.
func (s *StockLevel) Decrease(quantity, totalCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(s.AvailableQuantity()) {
		return shared.ErrInsufficientStock
	}

	s.Quantity = s.Quantity.Sub(quantity)
	s.TotalValue = s.TotalValue.Sub(totalCost)
	if s.TotalValue.IsNegative() {
		s.TotalValue = decimal.Zero
	}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockDecreasedEvent(s, quantity))
	if s.NeedsReorder() {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}
	return nil
}

// AdjustTo sets the quantity to the counted value (stock taking on simple,
// non-lot-tracked products). The reason is recorded for audit purposes.
func (s *StockLevel) AdjustTo(actualQuantity decimal.Decimal) (decimal.Decimal, error) {
	if actualQuantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}
	if actualQuantity.LessThan(s.ReservedQuantity) {
		return decimal.Zero, shared.NewDomainError("RESERVED_EXCEEDED", "Adjusted quantity cannot fall below reserved quantity")
	}

	difference := actualQuantity.Sub(s.Quantity)
	s.Quantity = actualQuantity
	s.TotalValue = actualQuantity.Mul(s.LastUnitCost)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockAdjustedEvent(s, difference))
	if s.NeedsReorder() {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}
	return difference, nil
}

// Reserve moves quantity into the reserved bucket for pending orders.
// Reservations are adjusted by order allocation, never by movements.
func (s *StockLevel) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(s.AvailableQuantity()) {
		return shared.ErrInsufficientStock
	}
	s.ReservedQuantity = s.ReservedQuantity.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// ReleaseReservation returns reserved quantity to the available pool
func (s *StockLevel) ReleaseReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(s.ReservedQuantity) {
		return shared.NewDomainError("INVALID_RELEASE", "Cannot release more than is reserved")
	}
	s.ReservedQuantity = s.ReservedQuantity.Sub(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// RecomputeFromLots recalculates quantity and total value from the lot
// store. This is the consistency repair path; it returns the drift between
// the stored aggregate and the lot-derived truth.
func (s *StockLevel) RecomputeFromLots(lots []StockLot) decimal.Decimal {
	quantity := decimal.Zero
	value := decimal.Zero
	for _, lot := range lots {
		if lot.ProductID != s.ProductID || lot.WarehouseID != s.WarehouseID {
			continue
		}
		if lot.IsAvailable() {
			quantity = quantity.Add(lot.RemainingQuantity)
			value = value.Add(lot.TotalValue())
		}
	}

	drift := quantity.Sub(s.Quantity)
	s.Quantity = quantity
	s.TotalValue = value
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return drift
}

// SetThresholds updates the replenishment thresholds
func (s *StockLevel) SetThresholds(minStockAlert, reorderPoint, reorderQuantity decimal.Decimal) error {
	if minStockAlert.IsNegative() || reorderPoint.IsNegative() || reorderQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Thresholds cannot be negative")
	}
	s.MinStockAlert = minStockAlert
	s.ReorderPoint = reorderPoint
	s.ReorderQuantity = reorderQuantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}
