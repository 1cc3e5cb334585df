package replenishment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusConfirmed, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// PurchaseOrder is the draft buying document produced from an approved
// replenishment suggestion. Confirmation and receiving are handled by the
// purchasing workflow, not here; this aggregate only covers draft creation.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID           `gorm:"type:uuid;not null"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;index"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ExpectedAt  *time.Time
	CreatedBy   string              `gorm:"type:varchar(100);not null"`
	Remark      string              `gorm:"type:varchar(500)"`
	Items       []PurchaseOrderItem `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewDraftPurchaseOrder creates a draft order for a supplier and warehouse
func NewDraftPurchaseOrder(supplierID, warehouseID uuid.UUID, createdBy string) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if createdBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Creator is required")
	}

	base := shared.NewBaseAggregateRoot()
	return &PurchaseOrder{
		BaseAggregateRoot: base,
		OrderNumber:       generateOrderNumber(base.ID),
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Status:            PurchaseOrderStatusDraft,
		TotalAmount:       decimal.Zero,
		CreatedBy:         createdBy,
		Items:             make([]PurchaseOrderItem, 0),
	}, nil
}

// generateOrderNumber derives a readable order number from date and ID prefix
func generateOrderNumber(id uuid.UUID) string {
	return fmt.Sprintf("PO-%s-%s", time.Now().Format("20060102"), id.String()[:8])
}

// AddItem appends a line item and recalculates the order total
func (o *PurchaseOrder) AddItem(productID uuid.UUID, quantity, unitCost decimal.Decimal, unit string) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Items can only be added to draft orders")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	item := PurchaseOrderItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		Amount:    quantity.Mul(unitCost).Round(4),
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.Items = append(o.Items, item)
	o.recalculateTotal()
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}
