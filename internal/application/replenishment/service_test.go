package replenishment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/replenishment"
	"github.com/mrp/backend/internal/domain/shared"
)

// memSuggestionRepo is an in-memory SuggestionRepository for service tests
type memSuggestionRepo struct {
	suggestions map[uuid.UUID]*replenishment.Suggestion
}

func newMemSuggestionRepo() *memSuggestionRepo {
	return &memSuggestionRepo{suggestions: make(map[uuid.UUID]*replenishment.Suggestion)}
}

func (r *memSuggestionRepo) FindByID(_ context.Context, id uuid.UUID) (*replenishment.Suggestion, error) {
	s, ok := r.suggestions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memSuggestionRepo) FindOpenByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*replenishment.Suggestion, error) {
	for _, s := range r.suggestions {
		if s.ProductID == productID && s.WarehouseID == warehouseID && s.IsOpen() {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memSuggestionRepo) List(_ context.Context, filter replenishment.SuggestionFilter) ([]replenishment.Suggestion, error) {
	result := make([]replenishment.Suggestion, 0)
	for _, s := range r.suggestions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && s.Priority != filter.Priority {
			continue
		}
		if filter.WarehouseID != nil && s.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.ProductID != nil && s.ProductID != *filter.ProductID {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (r *memSuggestionRepo) Count(ctx context.Context, filter replenishment.SuggestionFilter) (int64, error) {
	list, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *memSuggestionRepo) Create(_ context.Context, suggestion *replenishment.Suggestion) error {
	copied := *suggestion
	r.suggestions[suggestion.ID] = &copied
	return nil
}

func (r *memSuggestionRepo) Save(_ context.Context, suggestion *replenishment.Suggestion) error {
	copied := *suggestion
	r.suggestions[suggestion.ID] = &copied
	return nil
}

// memCatalogRepo is an in-memory SupplierCatalogRepository for service tests
type memCatalogRepo struct {
	entries []replenishment.SupplierCatalogEntry
}

func (r *memCatalogRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]replenishment.SupplierCatalogEntry, error) {
	result := make([]replenishment.SupplierCatalogEntry, 0)
	for _, e := range r.entries {
		if e.ProductID == productID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *memCatalogRepo) FindBySupplierAndProduct(_ context.Context, supplierID, productID uuid.UUID) (*replenishment.SupplierCatalogEntry, error) {
	for i := range r.entries {
		if r.entries[i].SupplierID == supplierID && r.entries[i].ProductID == productID {
			copied := r.entries[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCatalogRepo) Create(_ context.Context, entry *replenishment.SupplierCatalogEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memCatalogRepo) Save(_ context.Context, entry *replenishment.SupplierCatalogEntry) error {
	for i := range r.entries {
		if r.entries[i].ID == entry.ID {
			r.entries[i] = *entry
			return nil
		}
	}
	return shared.ErrNotFound
}

// memOrderRepo is an in-memory PurchaseOrderRepository for service tests
type memOrderRepo struct {
	orders map[uuid.UUID]*replenishment.PurchaseOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*replenishment.PurchaseOrder)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*replenishment.PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) Create(_ context.Context, order *replenishment.PurchaseOrder) error {
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

// memLevelRepo is a minimal in-memory StockLevelRepository for the scan
type memLevelRepo struct {
	levels []*inventory.StockLevel
}

func (r *memLevelRepo) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	for _, level := range r.levels {
		if level.ProductID == productID && level.WarehouseID == warehouseID {
			copied := *level
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLevelRepo) FindByProductAndWarehouseForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	return r.FindByProductAndWarehouse(ctx, productID, warehouseID)
}

func (r *memLevelRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockLevel, error) {
	result := make([]inventory.StockLevel, 0, len(r.levels))
	for _, level := range r.levels {
		result = append(result, *level)
	}
	return result, nil
}

func (r *memLevelRepo) FindBelowReorderThreshold(_ context.Context) ([]inventory.StockLevel, error) {
	result := make([]inventory.StockLevel, 0)
	for _, level := range r.levels {
		if level.NeedsReorder() {
			result = append(result, *level)
		}
	}
	return result, nil
}

func (r *memLevelRepo) Create(_ context.Context, level *inventory.StockLevel) error {
	copied := *level
	r.levels = append(r.levels, &copied)
	return nil
}

func (r *memLevelRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	for i, existing := range r.levels {
		if existing.ID == level.ID {
			copied := *level
			r.levels[i] = &copied
			return nil
		}
	}
	return shared.ErrNotFound
}

type testFixture struct {
	service        *ReplenishmentService
	suggestionRepo *memSuggestionRepo
	catalogRepo    *memCatalogRepo
	orderRepo      *memOrderRepo
	levelRepo      *memLevelRepo
}

func newTestFixture() *testFixture {
	suggestionRepo := newMemSuggestionRepo()
	catalogRepo := &memCatalogRepo{}
	orderRepo := newMemOrderRepo()
	levelRepo := &memLevelRepo{}
	scope := NewNoOpTransactionScope(suggestionRepo, catalogRepo, orderRepo, levelRepo)
	service := NewReplenishmentService(scope, suggestionRepo, zap.NewNop())
	return &testFixture{
		service:        service,
		suggestionRepo: suggestionRepo,
		catalogRepo:    catalogRepo,
		orderRepo:      orderRepo,
		levelRepo:      levelRepo,
	}
}

func (f *testFixture) addLowLevel(t *testing.T, quantity, minAlert, reorderQty int64) *inventory.StockLevel {
	t.Helper()
	level, err := inventory.NewStockLevel(uuid.New(), uuid.New(), "KG", true)
	require.NoError(t, err)
	require.NoError(t, level.SetThresholds(
		decimal.NewFromInt(minAlert), decimal.Zero, decimal.NewFromInt(reorderQty)))
	if quantity > 0 {
		require.NoError(t, level.Increase(decimal.NewFromInt(quantity), decimal.NewFromInt(1)))
	}
	level.ClearDomainEvents()
	require.NoError(t, f.levelRepo.Create(context.Background(), level))
	return level
}

func (f *testFixture) addCatalogEntry(t *testing.T, productID uuid.UUID, cost float64, moq int64, preferred bool) *replenishment.SupplierCatalogEntry {
	t.Helper()
	entry, err := replenishment.NewSupplierCatalogEntry(uuid.New(), productID,
		decimal.NewFromFloat(cost), decimal.NewFromInt(moq), 7, preferred)
	require.NoError(t, err)
	require.NoError(t, f.catalogRepo.Create(context.Background(), entry))
	return entry
}

func TestReplenishmentService_GenerateSuggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending suggestion for a low product", func(t *testing.T) {
		f := newTestFixture()
		level := f.addLowLevel(t, 40, 100, 150)
		f.addCatalogEntry(t, level.ProductID, 2.5, 0, true)

		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Scanned)
		assert.Equal(t, 1, resp.Created)
		require.Len(t, resp.Suggestions, 1)
		s := resp.Suggestions[0]
		assert.Equal(t, "pending", s.Status)
		assert.Equal(t, "critical", s.Priority)
		assert.True(t, s.SuggestedQuantity.Equal(decimal.NewFromInt(150)))
	})

	t.Run("supplier MOQ floors the suggested quantity", func(t *testing.T) {
		f := newTestFixture()
		level := f.addLowLevel(t, 40, 50, 0)
		f.addCatalogEntry(t, level.ProductID, 1.0, 200, true)

		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})

		require.NoError(t, err)
		require.Len(t, resp.Suggestions, 1)
		// fallback base 2*50=100, floored to MOQ 200
		assert.True(t, resp.Suggestions[0].SuggestedQuantity.Equal(decimal.NewFromInt(200)))
	})

	t.Run("skips pairs with an open suggestion", func(t *testing.T) {
		f := newTestFixture()
		level := f.addLowLevel(t, 40, 100, 150)
		f.addCatalogEntry(t, level.ProductID, 1.0, 0, true)

		first, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})
		require.NoError(t, err)
		require.Equal(t, 1, first.Created)

		second, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})
		require.NoError(t, err)
		assert.Equal(t, 0, second.Created)
		assert.Equal(t, 1, second.Skipped)
		require.Len(t, second.SkipReasons, 1)
		assert.Equal(t, SkipReasonOpenSuggestion, second.SkipReasons[0].Reason)
	})

	t.Run("skips products without an active supplier", func(t *testing.T) {
		f := newTestFixture()
		f.addLowLevel(t, 40, 100, 150)

		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Created)
		require.Len(t, resp.SkipReasons, 1)
		assert.Equal(t, SkipReasonNoSupplier, resp.SkipReasons[0].Reason)
	})

	t.Run("a pair with no orderable quantity is skipped, not fatal", func(t *testing.T) {
		f := newTestFixture()
		healthy := f.addLowLevel(t, 40, 100, 150)
		f.addCatalogEntry(t, healthy.ProductID, 1.0, 0, true)

		// reorder point only: no alert level, no reorder quantity and no
		// supplier MOQ, so the computed quantity is zero
		bare, err := inventory.NewStockLevel(uuid.New(), uuid.New(), "KG", true)
		require.NoError(t, err)
		require.NoError(t, bare.SetThresholds(decimal.Zero, decimal.NewFromInt(50), decimal.Zero))
		require.NoError(t, bare.Increase(decimal.NewFromInt(10), decimal.NewFromInt(1)))
		bare.ClearDomainEvents()
		require.NoError(t, f.levelRepo.Create(ctx, bare))
		f.addCatalogEntry(t, bare.ProductID, 1.0, 0, true)

		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Scanned)
		assert.Equal(t, 1, resp.Created)
		assert.Equal(t, 1, resp.Skipped)
		require.Len(t, resp.SkipReasons, 1)
		assert.Equal(t, bare.ProductID, resp.SkipReasons[0].ProductID)
		assert.Equal(t, SkipReasonNoQuantity, resp.SkipReasons[0].Reason)
		require.Len(t, resp.Suggestions, 1)
		assert.Equal(t, healthy.ProductID, resp.Suggestions[0].ProductID)
	})

	t.Run("scan can be limited to one warehouse", func(t *testing.T) {
		f := newTestFixture()
		inScope := f.addLowLevel(t, 40, 100, 150)
		outOfScope := f.addLowLevel(t, 40, 100, 150)
		f.addCatalogEntry(t, inScope.ProductID, 1.0, 0, true)
		f.addCatalogEntry(t, outOfScope.ProductID, 1.0, 0, true)

		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{WarehouseID: &inScope.WarehouseID})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Created)
		assert.Equal(t, inScope.WarehouseID, resp.Suggestions[0].WarehouseID)
	})

	t.Run("healthy products produce nothing", func(t *testing.T) {
		f := newTestFixture()
		level := f.addLowLevel(t, 500, 100, 150)
		f.addCatalogEntry(t, level.ProductID, 1.0, 0, true)

		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Scanned)
		assert.Equal(t, 0, resp.Created)
	})
}

func TestReplenishmentService_Approve(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testFixture, uuid.UUID) {
		f := newTestFixture()
		level := f.addLowLevel(t, 40, 100, 150)
		f.addCatalogEntry(t, level.ProductID, 2.0, 0, true)
		resp, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Suggestions, 1)
		return f, resp.Suggestions[0].ID
	}

	t.Run("creates a draft order and marks the suggestion ordered", func(t *testing.T) {
		f, suggestionID := setup(t)

		resp, err := f.service.Approve(ctx, suggestionID, "alice")

		require.NoError(t, err)
		assert.Equal(t, "ordered", resp.Suggestion.Status)
		assert.Equal(t, "alice", resp.Suggestion.ReviewedBy)
		require.NotNil(t, resp.Suggestion.PurchaseOrderID)

		order, err := f.orderRepo.FindByID(ctx, *resp.Suggestion.PurchaseOrderID)
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", string(order.Status))
		require.Len(t, order.Items, 1)
		assert.True(t, order.Items[0].Quantity.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, "KG", order.Items[0].Unit)
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(300)))
	})

	t.Run("approving twice fails", func(t *testing.T) {
		f, suggestionID := setup(t)
		_, err := f.service.Approve(ctx, suggestionID, "alice")
		require.NoError(t, err)

		_, err = f.service.Approve(ctx, suggestionID, "alice")
		require.Error(t, err)
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		f := newTestFixture()
		_, err := f.service.Approve(ctx, uuid.New(), "alice")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReplenishmentService_Reject(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	level := f.addLowLevel(t, 40, 100, 150)
	f.addCatalogEntry(t, level.ProductID, 1.0, 0, true)
	generated, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})
	require.NoError(t, err)
	suggestionID := generated.Suggestions[0].ID

	resp, err := f.service.Reject(ctx, suggestionID, "bob", "wrong supplier")

	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, "wrong supplier", resp.Reason)

	// a rejected suggestion no longer blocks the scan
	again, err := f.service.GenerateSuggestions(ctx, GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, again.Created)
}

func TestLowStockHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("scans the affected warehouse", func(t *testing.T) {
		f := newTestFixture()
		level := f.addLowLevel(t, 40, 100, 150)
		f.addCatalogEntry(t, level.ProductID, 1.0, 0, true)
		handler := NewLowStockHandler(zap.NewNop(), f.service)

		event := inventory.NewStockBelowThresholdEvent(level)
		require.NoError(t, handler.Handle(ctx, event))

		listed, total, err := f.service.List(ctx, SuggestionListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, listed, 1)
		assert.Equal(t, level.ProductID, listed[0].ProductID)
	})

	t.Run("rejects foreign event types", func(t *testing.T) {
		f := newTestFixture()
		handler := NewLowStockHandler(zap.NewNop(), f.service)

		level, err := inventory.NewStockLevel(uuid.New(), uuid.New(), "KG", true)
		require.NoError(t, err)
		event := inventory.NewStockAdjustedEvent(level, decimal.Zero)

		require.Error(t, handler.Handle(ctx, event))
	})
}
