package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mrp/backend/internal/domain/shared"
)

// StockLevelRepository persists StockLevel aggregates
type StockLevelRepository interface {
	// FindByProductAndWarehouse finds the aggregate for a product-warehouse pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*StockLevel, error)
	// FindByProductAndWarehouseForUpdate loads the aggregate taking a
	// row-level lock; only valid inside a transaction scope. This is the
	// serialization point for the read-allocate-write consumption sequence.
	FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*StockLevel, error)
	// FindAll lists stock levels with paging
	FindAll(ctx context.Context, filter shared.Filter) ([]StockLevel, error)
	// FindBelowReorderThreshold lists stock levels at or below
	// max(reorder_point, min_stock_alert)
	FindBelowReorderThreshold(ctx context.Context) ([]StockLevel, error)
	// Create inserts a new aggregate
	Create(ctx context.Context, level *StockLevel) error
	// Save persists aggregate changes
	Save(ctx context.Context, level *StockLevel) error
}

// StockLotRepository persists StockLot entities
type StockLotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockLot, error)
	// FindByLotNumber finds a lot by product and lot number
	FindByLotNumber(ctx context.Context, productID uuid.UUID, lotNumber string) (*StockLot, error)
	// FindConsumable lists available, non-depleted lots for a
	// product-warehouse pair in FIFO order (received date, then sequence)
	FindConsumable(ctx context.Context, productID, warehouseID uuid.UUID) ([]StockLot, error)
	// FindByProductAndWarehouse lists all lots for a pair regardless of status
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) ([]StockLot, error)
	// Create inserts a new lot; the store assigns the FIFO sequence
	Create(ctx context.Context, lot *StockLot) error
	// Save persists lot changes
	Save(ctx context.Context, lot *StockLot) error
	// SaveAll persists multiple lot changes
	SaveAll(ctx context.Context, lots []*StockLot) error
}

// MovementFilter narrows movement ledger queries
type MovementFilter struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	LotNumber   string
	Type        MovementType
	Since       *time.Time
	Page        int
	PageSize    int
}

// MovementRepository is the append-only movement ledger. There are
// deliberately no update or delete operations: the ledger is the canonical
// audit trail and the only source for replaying historical stock.
type MovementRepository interface {
	// Append writes one immutable movement record
	Append(ctx context.Context, movement *Movement) error
	// AppendAll writes several movement records in order
	AppendAll(ctx context.Context, movements []*Movement) error
	// List returns movements matching the filter in chronological order
	List(ctx context.Context, filter MovementFilter) ([]Movement, error)
	// Count returns the number of movements matching the filter
	Count(ctx context.Context, filter MovementFilter) (int64, error)
}
