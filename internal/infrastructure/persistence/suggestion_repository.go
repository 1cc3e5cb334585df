package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/replenishment"
	"github.com/mrp/backend/internal/domain/shared"
)

// GormSuggestionRepository implements replenishment.SuggestionRepository using GORM
type GormSuggestionRepository struct {
	db *gorm.DB
}

// NewGormSuggestionRepository creates a new GORM-backed suggestion repository
func NewGormSuggestionRepository(db *gorm.DB) *GormSuggestionRepository {
	return &GormSuggestionRepository{db: db}
}

// FindByID finds a suggestion by its ID
func (r *GormSuggestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*replenishment.Suggestion, error) {
	var suggestion replenishment.Suggestion
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&suggestion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &suggestion, nil
}

// FindOpenByProductAndWarehouse finds a pending or approved suggestion for a
// product-warehouse pair
func (r *GormSuggestionRepository) FindOpenByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*replenishment.Suggestion, error) {
	var suggestion replenishment.Suggestion
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Where("status IN ?", []replenishment.SuggestionStatus{
			replenishment.SuggestionStatusPending,
			replenishment.SuggestionStatusApproved,
		}).
		Order("created_at DESC").
		First(&suggestion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &suggestion, nil
}

// List returns suggestions matching the filter ordered by priority then age.
// Priority ordering is by urgency, not alphabetically.
func (r *GormSuggestionRepository) List(ctx context.Context, filter replenishment.SuggestionFilter) ([]replenishment.Suggestion, error) {
	var suggestions []replenishment.Suggestion
	query := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("CASE priority WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END ASC").
		Order("created_at ASC")

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

// Count returns the number of suggestions matching the filter
func (r *GormSuggestionRepository) Count(ctx context.Context, filter replenishment.SuggestionFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&replenishment.Suggestion{}), filter).Count(&count).Error
	return count, err
}

// Create inserts a new suggestion
func (r *GormSuggestionRepository) Create(ctx context.Context, suggestion *replenishment.Suggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

// Save persists suggestion changes guarded by the optimistic version column
func (r *GormSuggestionRepository) Save(ctx context.Context, suggestion *replenishment.Suggestion) error {
	result := r.db.WithContext(ctx).
		Model(&replenishment.Suggestion{}).
		Where("id = ? AND version < ?", suggestion.ID, suggestion.GetVersion()).
		Select("*").
		Omit("id", "created_at").
		Updates(suggestion)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormSuggestionRepository) applyFilter(query *gorm.DB, filter replenishment.SuggestionFilter) *gorm.DB {
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	return query
}

// Ensure interface compliance
var _ replenishment.SuggestionRepository = (*GormSuggestionRepository)(nil)
