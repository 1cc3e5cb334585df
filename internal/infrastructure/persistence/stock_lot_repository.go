package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/shared"
)

// GormStockLotRepository implements inventory.StockLotRepository using GORM
type GormStockLotRepository struct {
	db *gorm.DB
}

// NewGormStockLotRepository creates a new GORM-backed stock lot repository
func NewGormStockLotRepository(db *gorm.DB) *GormStockLotRepository {
	return &GormStockLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormStockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLot, error) {
	var lot inventory.StockLot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByLotNumber finds a lot by product and lot number
func (r *GormStockLotRepository) FindByLotNumber(ctx context.Context, productID uuid.UUID, lotNumber string) (*inventory.StockLot, error) {
	var lot inventory.StockLot
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND lot_number = ?", productID, lotNumber).
		First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindConsumable lists available, non-depleted lots in FIFO order. Sequence
// is the tiebreak for lots sharing the same received timestamp.
func (r *GormStockLotRepository) FindConsumable(ctx context.Context, productID, warehouseID uuid.UUID) ([]inventory.StockLot, error) {
	var lots []inventory.StockLot
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Where("status = ?", inventory.LotStatusAvailable).
		Where("remaining_quantity > 0").
		Order("received_at ASC, sequence ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByProductAndWarehouse lists all lots for a pair regardless of status
func (r *GormStockLotRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) ([]inventory.StockLot, error) {
	var lots []inventory.StockLot
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Order("received_at ASC, sequence ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// Create inserts a new lot; the database assigns the FIFO sequence
func (r *GormStockLotRepository) Create(ctx context.Context, lot *inventory.StockLot) error {
	err := r.db.WithContext(ctx).Create(lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists lot changes
func (r *GormStockLotRepository) Save(ctx context.Context, lot *inventory.StockLot) error {
	return r.db.WithContext(ctx).
		Model(&inventory.StockLot{}).
		Where("id = ?", lot.ID).
		Select("*").
		Omit("id", "created_at", "sequence").
		Updates(lot).Error
}

// SaveAll persists multiple lot changes
func (r *GormStockLotRepository) SaveAll(ctx context.Context, lots []*inventory.StockLot) error {
	for _, lot := range lots {
		if err := r.Save(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

// Ensure interface compliance
var _ inventory.StockLotRepository = (*GormStockLotRepository)(nil)
