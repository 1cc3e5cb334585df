package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/replenishment"
)

// stockLotsDDL mirrors the production migration. The lots table is created by
// hand because SQLite cannot express an auto-incrementing non-primary column;
// tests assign Sequence explicitly.
const stockLotsDDL = `
CREATE TABLE stock_lots (
	id            uuid PRIMARY KEY,
	created_at    timestamptz,
	updated_at    timestamptz,
	lot_number    varchar(50) NOT NULL,
	product_id    uuid NOT NULL,
	warehouse_id  uuid NOT NULL,
	initial_quantity   decimal(18,4) NOT NULL,
	remaining_quantity decimal(18,4) NOT NULL,
	unit_cost     decimal(18,4) NOT NULL,
	unit          varchar(20) NOT NULL,
	received_at   timestamptz NOT NULL,
	expiry_date   timestamptz,
	status        varchar(20) NOT NULL DEFAULT 'available',
	sequence      integer NOT NULL,
	CONSTRAINT idx_stock_lot_product_number UNIQUE (product_id, lot_number)
)`

// openTestDB opens an in-memory SQLite database with the full schema
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         SilentGormLogger(),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&inventory.StockLevel{},
		&inventory.Movement{},
		&replenishment.Suggestion{},
		&replenishment.SupplierCatalogEntry{},
		&replenishment.PurchaseOrder{},
		&replenishment.PurchaseOrderItem{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Exec(stockLotsDDL).Error)

	return db
}
