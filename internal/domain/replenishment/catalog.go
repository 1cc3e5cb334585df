package replenishment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// SupplierCatalogEntry records the purchasing terms a supplier offers for a
// product. Supplier resolution prefers an active preferred entry, then any
// active entry; products without an active entry cannot be replenished
// automatically.
type SupplierCatalogEntry struct {
	shared.BaseEntity
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_catalog_supplier_product,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_catalog_supplier_product,priority:2"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MinOrderQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LeadTimeDays int             `gorm:"not null;default:0"`
	Preferred    bool            `gorm:"not null;default:false"`
	Active       bool            `gorm:"not null;default:true"`
	SupplierSKU  string          `gorm:"type:varchar(100)"`
	CurrencyCode string          `gorm:"type:varchar(3);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (SupplierCatalogEntry) TableName() string {
	return "supplier_catalog_entries"
}

// NewSupplierCatalogEntry creates a catalog entry for a supplier-product pair
func NewSupplierCatalogEntry(
	supplierID, productID uuid.UUID,
	unitCost, minOrderQty decimal.Decimal,
	leadTimeDays int,
	preferred bool,
) (*SupplierCatalogEntry, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if minOrderQty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MOQ", "Minimum order quantity cannot be negative")
	}
	if leadTimeDays < 0 {
		return nil, shared.NewDomainError("INVALID_LEAD_TIME", "Lead time cannot be negative")
	}

	return &SupplierCatalogEntry{
		BaseEntity:   shared.NewBaseEntity(),
		SupplierID:   supplierID,
		ProductID:    productID,
		UnitCost:     unitCost,
		MinOrderQty:  minOrderQty,
		LeadTimeDays: leadTimeDays,
		Preferred:    preferred,
		Active:       true,
		CurrencyCode: "USD",
	}, nil
}

// ResolveSupplier picks the catalog entry to buy from. Active preferred
// entries win; otherwise the cheapest active entry is used. Returns
// ErrNoSupplierSource when no active entry exists.
func ResolveSupplier(entries []SupplierCatalogEntry) (*SupplierCatalogEntry, error) {
	var fallback *SupplierCatalogEntry
	for i := range entries {
		e := &entries[i]
		if !e.Active {
			continue
		}
		if e.Preferred {
			return e, nil
		}
		if fallback == nil || e.UnitCost.LessThan(fallback.UnitCost) {
			fallback = e
		}
	}
	if fallback == nil {
		return nil, shared.ErrNoSupplierSource
	}
	return fallback, nil
}
