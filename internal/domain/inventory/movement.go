package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypeIn represents stock entering inventory (receipt, manual addition)
	MovementTypeIn MovementType = "in"
	// MovementTypeOut represents stock leaving inventory
	MovementTypeOut MovementType = "out"
	// MovementTypeTransfer represents stock moved between warehouses
	MovementTypeTransfer MovementType = "transfer"
	// MovementTypeAdjustment represents a stock count correction
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeProduction represents finished goods produced into stock
	MovementTypeProduction MovementType = "production"
	// MovementTypeConsumption represents material consumed from lots
	MovementTypeConsumption MovementType = "consumption"
	// MovementTypeQuarantine represents a lot held back from available stock
	MovementTypeQuarantine MovementType = "quarantine"
	// MovementTypeRelease represents a quarantined lot returned to available stock
	MovementTypeRelease MovementType = "release"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer,
		MovementTypeAdjustment, MovementTypeProduction,
		MovementTypeConsumption, MovementTypeQuarantine, MovementTypeRelease:
		return true
	}
	return false
}

// IsIncrease returns true if this movement type increases stock quantity
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementTypeIn, MovementTypeProduction, MovementTypeRelease:
		return true
	}
	return false
}

// IsDecrease returns true if this movement type decreases stock quantity
func (t MovementType) IsDecrease() bool {
	switch t {
	case MovementTypeOut, MovementTypeConsumption, MovementTypeQuarantine:
		return true
	}
	return false
}

// ReferenceType identifies the kind of document that caused a movement
type ReferenceType string

const (
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	ReferenceTypeWorkOrder     ReferenceType = "WORK_ORDER"
	ReferenceTypeReceipt       ReferenceType = "RECEIPT"
	ReferenceTypeManual        ReferenceType = "MANUAL"
	ReferenceTypeTransfer      ReferenceType = "TRANSFER"
	ReferenceTypeStockTaking   ReferenceType = "STOCK_TAKING"
)

// Movement is an immutable ledger record of a single stock quantity change.
// Once created, movements are never edited or deleted - corrections are
// recorded as new movements. Replaying movements in creation order per
// product and warehouse reconstructs historical stock at any point in time.
type Movement struct {
	shared.BaseEntity
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_scope,priority:1"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_scope,priority:2"`
	Type           MovementType    `gorm:"type:varchar(20);not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // always positive; Type carries direction
	QuantityBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LotNumber      string          `gorm:"type:varchar(50);index"`
	ReferenceType  ReferenceType   `gorm:"type:varchar(30);not null"`
	ReferenceID    string          `gorm:"type:varchar(100);not null"`
	PerformedBy    string          `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a new movement record. The before/after pair must be
// consistent with the signed effect of the quantity given the movement
// type; adjustment and transfer records may carry either sign.
func NewMovement(
	productID, warehouseID uuid.UUID,
	movementType MovementType,
	quantity, quantityBefore, quantityAfter, unitCost decimal.Decimal,
	lotNumber string,
	referenceType ReferenceType,
	referenceID string,
	performedBy string,
) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type: "+movementType.String())
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if performedBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Performed-by actor is required")
	}

	delta := quantityAfter.Sub(quantityBefore)
	switch {
	case movementType.IsIncrease():
		if !delta.Equal(quantity) {
			return nil, shared.NewDomainError("INCONSISTENT_MOVEMENT", "Balance delta does not match quantity for increasing movement")
		}
	case movementType.IsDecrease():
		if !delta.Equal(quantity.Neg()) {
			return nil, shared.NewDomainError("INCONSISTENT_MOVEMENT", "Balance delta does not match quantity for decreasing movement")
		}
	default:
		if !delta.Abs().Equal(quantity) {
			return nil, shared.NewDomainError("INCONSISTENT_MOVEMENT", "Balance delta does not match quantity")
		}
	}

	return &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Type:           movementType,
		Quantity:       quantity,
		QuantityBefore: quantityBefore,
		QuantityAfter:  quantityAfter,
		UnitCost:       unitCost,
		LotNumber:      lotNumber,
		ReferenceType:  referenceType,
		ReferenceID:    referenceID,
		PerformedBy:    performedBy,
	}, nil
}

// SignedQuantity returns the quantity with the sign implied by the type.
// For adjustment and transfer the sign is taken from the balance delta.
func (m *Movement) SignedQuantity() decimal.Decimal {
	switch {
	case m.Type.IsIncrease():
		return m.Quantity
	case m.Type.IsDecrease():
		return m.Quantity.Neg()
	default:
		return m.QuantityAfter.Sub(m.QuantityBefore)
	}
}
