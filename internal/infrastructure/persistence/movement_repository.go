package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/inventory"
)

// GormMovementRepository implements the append-only movement ledger using
// GORM. Updates and deletes are deliberately absent.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GORM-backed movement repository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append writes one immutable movement record
func (r *GormMovementRepository) Append(ctx context.Context, movement *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// AppendAll writes several movement records in order
func (r *GormMovementRepository) AppendAll(ctx context.Context, movements []*inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// List returns movements matching the filter in chronological order
func (r *GormMovementRepository) List(ctx context.Context, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	query := r.applyFilter(r.db.WithContext(ctx), filter).Order("created_at ASC, id ASC")

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Count returns the number of movements matching the filter
func (r *GormMovementRepository) Count(ctx context.Context, filter inventory.MovementFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Movement{}), filter).Count(&count).Error
	return count, err
}

func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter inventory.MovementFilter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.LotNumber != "" {
		query = query.Where("lot_number = ?", filter.LotNumber)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	return query
}

// Ensure interface compliance
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
