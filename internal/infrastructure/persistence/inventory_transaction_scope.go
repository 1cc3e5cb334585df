package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/mrp/backend/internal/application/inventory"
	"github.com/mrp/backend/internal/domain/inventory"
)

// GormInventoryTransactionScope implements the inventory transaction scope
// using GORM transactions. Every Execute call opens one database transaction
// and hands the callback repositories bound to it.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GORM-backed transaction scope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx})
	})
}

// gormInventoryRepositories provides repositories bound to a single transaction
type gormInventoryRepositories struct {
	tx *gorm.DB
}

func (r *gormInventoryRepositories) LevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

func (r *gormInventoryRepositories) LotRepo() inventory.StockLotRepository {
	return NewGormStockLotRepository(r.tx)
}

func (r *gormInventoryRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Ensure interface compliance
var _ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormInventoryRepositories)(nil)
