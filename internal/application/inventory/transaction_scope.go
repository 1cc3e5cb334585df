package inventory

import (
	"context"

	"github.com/mrp/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - LevelRepo: the StockLevel aggregate. FindByProductAndWarehouseForUpdate
//     takes a row lock and is the serialization point for stock mutations.
//   - LotRepo: StockLot entities. Lots have their own storage because FIFO
//     planning reads many of them per consumption.
//   - MovementRepo: append-only ledger records, written in the same
//     transaction as the state change they describe.
type TransactionalRepositories interface {
	// LevelRepo returns the stock level repository scoped to the current transaction
	LevelRepo() inventory.StockLevelRepository
	// LotRepo returns the stock lot repository scoped to the current transaction
	LotRepo() inventory.StockLotRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests and in-memory wiring.
type NoOpTransactionScope struct {
	levelRepo    inventory.StockLevelRepository
	lotRepo      inventory.StockLotRepository
	movementRepo inventory.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	levelRepo inventory.StockLevelRepository,
	lotRepo inventory.StockLotRepository,
	movementRepo inventory.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		levelRepo:    levelRepo,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) LevelRepo() inventory.StockLevelRepository {
	return s.levelRepo
}

// LotRepo returns the stock lot repository.
func (s *NoOpTransactionScope) LotRepo() inventory.StockLotRepository {
	return s.lotRepo
}

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
