package persistence

import (
	"context"

	"gorm.io/gorm"

	appreplenishment "github.com/mrp/backend/internal/application/replenishment"
	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/replenishment"
)

// GormReplenishmentTransactionScope implements the replenishment transaction
// scope using GORM transactions.
type GormReplenishmentTransactionScope struct {
	db *gorm.DB
}

// NewGormReplenishmentTransactionScope creates a new GORM-backed transaction scope
func NewGormReplenishmentTransactionScope(db *gorm.DB) *GormReplenishmentTransactionScope {
	return &GormReplenishmentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormReplenishmentTransactionScope) Execute(ctx context.Context, fn func(repos appreplenishment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormReplenishmentRepositories{tx: tx})
	})
}

// gormReplenishmentRepositories provides repositories bound to a single transaction
type gormReplenishmentRepositories struct {
	tx *gorm.DB
}

func (r *gormReplenishmentRepositories) SuggestionRepo() replenishment.SuggestionRepository {
	return NewGormSuggestionRepository(r.tx)
}

func (r *gormReplenishmentRepositories) CatalogRepo() replenishment.SupplierCatalogRepository {
	return NewGormSupplierCatalogRepository(r.tx)
}

func (r *gormReplenishmentRepositories) OrderRepo() replenishment.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormReplenishmentRepositories) LevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// Ensure interface compliance
var _ appreplenishment.TransactionScope = (*GormReplenishmentTransactionScope)(nil)
var _ appreplenishment.TransactionalRepositories = (*gormReplenishmentRepositories)(nil)
