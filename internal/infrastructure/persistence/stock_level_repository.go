package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/shared"
)

// GormStockLevelRepository implements inventory.StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GORM-backed stock level repository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByProductAndWarehouse finds the aggregate for a product-warehouse pair
func (r *GormStockLevelRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByProductAndWarehouseForUpdate loads the aggregate taking a row-level
// lock. Must run inside a transaction; outside one the lock is released
// immediately and provides no serialization.
func (r *GormStockLevelRepository) FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindAll lists stock levels with paging
func (r *GormStockLevelRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindBelowReorderThreshold lists stock levels at or below the effective
// reorder threshold, which is the greater of reorder point and minimum
// stock alert. Pairs with a zero threshold are never reported.
func (r *GormStockLevelRepository) FindBelowReorderThreshold(ctx context.Context) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("GREATEST(reorder_point, min_stock_alert) > 0").
		Where("quantity <= GREATEST(reorder_point, min_stock_alert)").
		Order("quantity / GREATEST(reorder_point, min_stock_alert) ASC").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// Create inserts a new aggregate
func (r *GormStockLevelRepository) Create(ctx context.Context, level *inventory.StockLevel) error {
	err := r.db.WithContext(ctx).Create(level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists aggregate changes guarded by the optimistic version column
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockLevel{}).
		Where("id = ? AND version < ?", level.ID, level.GetVersion()).
		Select("*").
		Omit("id", "created_at").
		Updates(level)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure interface compliance
var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
