package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// LotStatus represents the lifecycle state of a stock lot
type LotStatus string

const (
	// LotStatusAvailable means the lot can be consumed
	LotStatusAvailable LotStatus = "available"
	// LotStatusQuarantine means the lot is held back from consumption
	LotStatusQuarantine LotStatus = "quarantine"
	// LotStatusExpired means the lot passed its expiry date
	LotStatusExpired LotStatus = "expired"
	// LotStatusDepleted means the lot remaining quantity reached zero; terminal
	LotStatusDepleted LotStatus = "depleted"
)

// IsValid returns true if the lot status is valid
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusAvailable, LotStatusQuarantine, LotStatusExpired, LotStatusDepleted:
		return true
	}
	return false
}

// String returns the string representation
func (s LotStatus) String() string {
	return string(s)
}

// StockLot represents a dated, priced batch of a material received at one
// time. Lots are consumed independently for traceability; InitialQuantity
// is immutable once created and RemainingQuantity only ever decreases.
type StockLot struct {
	shared.BaseEntity
	LotNumber         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_lot_product_number,priority:2"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_lot_product_number,priority:1;index:idx_stock_lot_scope,priority:1"`
	WarehouseID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_lot_scope,priority:2"`
	InitialQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	ReceivedAt        time.Time       `gorm:"type:timestamptz;not null;index"`
	ExpiryDate        *time.Time      `gorm:"type:timestamptz"`
	Status            LotStatus       `gorm:"type:varchar(20);not null;default:'available';index"`
	// Sequence is a database-assigned monotonic counter used as the FIFO
	// tiebreak when two lots share the same ReceivedAt instant.
	Sequence int64 `gorm:"autoIncrement;uniqueIndex"`
}

// TableName returns the table name for GORM
func (StockLot) TableName() string {
	return "stock_lots"
}

// NewStockLot creates a new stock lot with full remaining quantity
func NewStockLot(
	lotNumber string,
	productID, warehouseID uuid.UUID,
	quantity, unitCost decimal.Decimal,
	unit string,
	receivedAt time.Time,
	expiryDate *time.Time,
) (*StockLot, error) {
	if lotNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	return &StockLot{
		BaseEntity:        shared.NewBaseEntity(),
		LotNumber:         lotNumber,
		ProductID:         productID,
		WarehouseID:       warehouseID,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		UnitCost:          unitCost,
		Unit:              unit,
		ReceivedAt:        receivedAt,
		ExpiryDate:        expiryDate,
		Status:            LotStatusAvailable,
	}, nil
}

// UsedQuantity returns how much of the lot has been consumed
func (l *StockLot) UsedQuantity() decimal.Decimal {
	return l.InitialQuantity.Sub(l.RemainingQuantity)
}

// IsExpired returns true if the lot has passed its expiry date
func (l *StockLot) IsExpired() bool {
	if l.ExpiryDate == nil {
		return false
	}
	return l.ExpiryDate.Before(time.Now())
}

// IsAvailable returns true if the lot can be consumed
func (l *StockLot) IsAvailable() bool {
	return l.Status == LotStatusAvailable &&
		l.RemainingQuantity.GreaterThan(decimal.Zero) &&
		!l.IsExpired()
}

// Take reduces the remaining quantity by exactly the requested amount.
// A lot never over-draws: requesting more than remains is an error, and a
// lot that reaches zero transitions to depleted and never reopens.
func (l *StockLot) Take(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if l.Status == LotStatusDepleted {
		return shared.NewDomainError("LOT_DEPLETED", "Cannot take from a depleted lot")
	}
	if l.Status != LotStatusAvailable {
		return shared.NewDomainError("LOT_NOT_AVAILABLE", "Lot is not available for consumption")
	}
	if quantity.GreaterThan(l.RemainingQuantity) {
		return shared.ErrInsufficientStock
	}

	l.RemainingQuantity = l.RemainingQuantity.Sub(quantity)
	if l.RemainingQuantity.IsZero() {
		l.Status = LotStatusDepleted
	}
	l.UpdatedAt = time.Now()
	return nil
}

// Quarantine holds the lot back from consumption
func (l *StockLot) Quarantine() error {
	if l.Status != LotStatusAvailable {
		return shared.ErrInvalidStateTransition
	}
	l.Status = LotStatusQuarantine
	l.UpdatedAt = time.Now()
	return nil
}

// Release returns a quarantined lot to available
func (l *StockLot) Release() error {
	if l.Status != LotStatusQuarantine {
		return shared.ErrInvalidStateTransition
	}
	l.Status = LotStatusAvailable
	l.UpdatedAt = time.Now()
	return nil
}

// MarkExpired transitions the lot to expired. Depleted lots stay depleted.
func (l *StockLot) MarkExpired() error {
	if l.Status == LotStatusDepleted {
		return shared.ErrInvalidStateTransition
	}
	l.Status = LotStatusExpired
	l.UpdatedAt = time.Now()
	return nil
}

// TotalValue returns the value of the remaining quantity
func (l *StockLot) TotalValue() decimal.Decimal {
	return l.RemainingQuantity.Mul(l.UnitCost)
}
