package replenishment

import (
	"context"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/replenishment"
)

// TransactionScope provides transactional access to replenishment
// repositories. Approving a suggestion and creating the draft purchase order
// from it happen in one transaction, so a suggestion can never be marked
// ordered without its order existing.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories the
// replenishment workflow touches within one transaction.
type TransactionalRepositories interface {
	// SuggestionRepo returns the suggestion repository scoped to the current transaction
	SuggestionRepo() replenishment.SuggestionRepository
	// CatalogRepo returns the supplier catalog repository scoped to the current transaction
	CatalogRepo() replenishment.SupplierCatalogRepository
	// OrderRepo returns the purchase order repository scoped to the current transaction
	OrderRepo() replenishment.PurchaseOrderRepository
	// LevelRepo returns the stock level repository scoped to the current transaction
	LevelRepo() inventory.StockLevelRepository
}

// NoOpTransactionScope runs functions without a real transaction.
type NoOpTransactionScope struct {
	suggestionRepo replenishment.SuggestionRepository
	catalogRepo    replenishment.SupplierCatalogRepository
	orderRepo      replenishment.PurchaseOrderRepository
	levelRepo      inventory.StockLevelRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	suggestionRepo replenishment.SuggestionRepository,
	catalogRepo replenishment.SupplierCatalogRepository,
	orderRepo replenishment.PurchaseOrderRepository,
	levelRepo inventory.StockLevelRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		suggestionRepo: suggestionRepo,
		catalogRepo:    catalogRepo,
		orderRepo:      orderRepo,
		levelRepo:      levelRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SuggestionRepo returns the suggestion repository.
func (s *NoOpTransactionScope) SuggestionRepo() replenishment.SuggestionRepository {
	return s.suggestionRepo
}

// CatalogRepo returns the supplier catalog repository.
func (s *NoOpTransactionScope) CatalogRepo() replenishment.SupplierCatalogRepository {
	return s.catalogRepo
}

// OrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) OrderRepo() replenishment.PurchaseOrderRepository {
	return s.orderRepo
}

// LevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) LevelRepo() inventory.StockLevelRepository {
	return s.levelRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
