package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/replenishment"
	"github.com/mrp/backend/internal/domain/shared"
)

// GormSupplierCatalogRepository implements replenishment.SupplierCatalogRepository using GORM
type GormSupplierCatalogRepository struct {
	db *gorm.DB
}

// NewGormSupplierCatalogRepository creates a new GORM-backed supplier catalog repository
func NewGormSupplierCatalogRepository(db *gorm.DB) *GormSupplierCatalogRepository {
	return &GormSupplierCatalogRepository{db: db}
}

// FindByProduct lists all catalog entries for a product
func (r *GormSupplierCatalogRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]replenishment.SupplierCatalogEntry, error) {
	var entries []replenishment.SupplierCatalogEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("unit_cost ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindBySupplierAndProduct finds a specific entry
func (r *GormSupplierCatalogRepository) FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*replenishment.SupplierCatalogEntry, error) {
	var entry replenishment.SupplierCatalogEntry
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new catalog entry
func (r *GormSupplierCatalogRepository) Create(ctx context.Context, entry *replenishment.SupplierCatalogEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists entry changes
func (r *GormSupplierCatalogRepository) Save(ctx context.Context, entry *replenishment.SupplierCatalogEntry) error {
	return r.db.WithContext(ctx).
		Model(&replenishment.SupplierCatalogEntry{}).
		Where("id = ?", entry.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(entry).Error
}

// Ensure interface compliance
var _ replenishment.SupplierCatalogRepository = (*GormSupplierCatalogRepository)(nil)
