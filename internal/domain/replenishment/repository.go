package replenishment

import (
	"context"

	"github.com/google/uuid"
)

// SuggestionFilter narrows suggestion queries
type SuggestionFilter struct {
	WarehouseID *uuid.UUID
	ProductID   *uuid.UUID
	Status      SuggestionStatus
	Priority    Priority
	Page        int
	PageSize    int
}

// SuggestionRepository persists replenishment suggestions
type SuggestionRepository interface {
	// FindByID finds a suggestion by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Suggestion, error)
	// FindOpenByProductAndWarehouse finds a pending or approved suggestion
	// for a product-warehouse pair; the scan skips pairs that already have one
	FindOpenByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*Suggestion, error)
	// List returns suggestions matching the filter ordered by priority then age
	List(ctx context.Context, filter SuggestionFilter) ([]Suggestion, error)
	// Count returns the number of suggestions matching the filter
	Count(ctx context.Context, filter SuggestionFilter) (int64, error)
	// Create inserts a new suggestion
	Create(ctx context.Context, suggestion *Suggestion) error
	// Save persists suggestion changes
	Save(ctx context.Context, suggestion *Suggestion) error
}

// SupplierCatalogRepository persists supplier catalog entries
type SupplierCatalogRepository interface {
	// FindByProduct lists all catalog entries for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]SupplierCatalogEntry, error)
	// FindBySupplierAndProduct finds a specific entry
	FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*SupplierCatalogEntry, error)
	// Create inserts a new catalog entry
	Create(ctx context.Context, entry *SupplierCatalogEntry) error
	// Save persists entry changes
	Save(ctx context.Context, entry *SupplierCatalogEntry) error
}

// PurchaseOrderRepository persists draft purchase orders
type PurchaseOrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// Create inserts a new order with its items
	Create(ctx context.Context, order *PurchaseOrder) error
}
