package inventory

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/shared"
)

// memLevelRepo is an in-memory StockLevelRepository for service tests
type memLevelRepo struct {
	levels map[string]*inventory.StockLevel
}

func newMemLevelRepo() *memLevelRepo {
	return &memLevelRepo{levels: make(map[string]*inventory.StockLevel)}
}

func levelKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

func (r *memLevelRepo) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	level, ok := r.levels[levelKey(productID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *level
	return &copied, nil
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
	key := levelKey(level.ProductID, level.WarehouseID)
	if _, ok := r.levels[key]; ok {
		return shared.ErrAlreadyExists
	}
	copied := *level
	r.levels[key] = &copied
	return nil
}

func (r *memLevelRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	copied := *level
	r.levels[levelKey(level.ProductID, level.WarehouseID)] = &copied
	return nil
}

// memLotRepo is an in-memory StockLotRepository for service tests
type memLotRepo struct {
	lots    map[uuid.UUID]*inventory.StockLot
	nextSeq int64
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uuid.UUID]*inventory.StockLot)}
}

func (r *memLotRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockLot, error) {
	lot, ok := r.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *lot
	return &copied, nil
}

func (r *memLotRepo) FindByLotNumber(_ context.Context, productID uuid.UUID, lotNumber string) (*inventory.StockLot, error) {
	for _, lot := range r.lots {
		if lot.ProductID == productID && lot.LotNumber == lotNumber {
			copied := *lot
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLotRepo) FindConsumable(_ context.Context, productID, warehouseID uuid.UUID) ([]inventory.StockLot, error) {
	result := make([]inventory.StockLot, 0)
	for _, lot := range r.lots {
		if lot.ProductID == productID && lot.WarehouseID == warehouseID && lot.IsAvailable() {
			result = append(result, *lot)
		}
	}
	inventory.SortLotsFIFO(result)
	return result, nil
}

func (r *memLotRepo) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) ([]inventory.StockLot, error) {
	result := make([]inventory.StockLot, 0)
	for _, lot := range r.lots {
		if lot.ProductID == productID && lot.WarehouseID == warehouseID {
			result = append(result, *lot)
		}
	}
	inventory.SortLotsFIFO(result)
	return result, nil
}

func (r *memLotRepo) Create(_ context.Context, lot *inventory.StockLot) error {
	r.nextSeq++
	lot.Sequence = r.nextSeq
	copied := *lot
	r.lots[lot.ID] = &copied
	return nil
}

func (r *memLotRepo) Save(_ context.Context, lot *inventory.StockLot) error {
	copied := *lot
	r.lots[lot.ID] = &copied
	return nil
}

func (r *memLotRepo) SaveAll(ctx context.Context, lots []*inventory.StockLot) error {
	for _, lot := range lots {
		if err := r.Save(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

// memMovementRepo is an in-memory MovementRepository for service tests
type memMovementRepo struct {
	movements []inventory.Movement
}

func (r *memMovementRepo) Append(_ context.Context, movement *inventory.Movement) error {
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *memMovementRepo) AppendAll(ctx context.Context, movements []*inventory.Movement) error {
	for _, m := range movements {
		if err := r.Append(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memMovementRepo) matches(m inventory.Movement, filter inventory.MovementFilter) bool {
	if filter.ProductID != nil && m.ProductID != *filter.ProductID {
		return false
	}
	if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
		return false
	}
	if filter.LotNumber != "" && m.LotNumber != filter.LotNumber {
		return false
	}
	if filter.Type != "" && m.Type != filter.Type {
		return false
	}
	if filter.Since != nil && m.CreatedAt.Before(*filter.Since) {
		return false
	}
	return true
}

func (r *memMovementRepo) List(_ context.Context, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	result := make([]inventory.Movement, 0)
	for _, m := range r.movements {
		if r.matches(m, filter) {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memMovementRepo) Count(ctx context.Context, filter inventory.MovementFilter) (int64, error) {
	list, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func newTestService() (*StockService, *memLevelRepo, *memLotRepo, *memMovementRepo) {
	levelRepo := newMemLevelRepo()
	lotRepo := newMemLotRepo()
	movementRepo := &memMovementRepo{}
	scope := NewNoOpTransactionScope(levelRepo, lotRepo, movementRepo)
	service := NewStockService(scope, levelRepo, lotRepo, movementRepo, zap.NewNop())
	return service, levelRepo, lotRepo, movementRepo
}

func receiveLot(t *testing.T, service *StockService, productID, warehouseID uuid.UUID, lotNumber string, quantity int64, cost float64, receivedAt time.Time) {
	t.Helper()
	_, err := service.CreateLot(context.Background(), CreateLotRequest{
		LotNumber:   lotNumber,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.NewFromInt(quantity),
		Unit:        "KG",
		UnitCost:    decimal.NewFromFloat(cost),
		ReceivedAt:  &receivedAt,
	}, "tester")
	require.NoError(t, err)
}

func TestStockService_CreateLot(t *testing.T) {
	ctx := context.Background()

	t.Run("creates level, lot and movement on first receipt", func(t *testing.T) {
		service, levelRepo, _, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()

		receiveLot(t, service, productID, warehouseID, "L1", 100, 2.0, time.Now())

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, level.TotalValue.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, "KG", level.CanonicalUnit)

		require.Len(t, movementRepo.movements, 1)
		m := movementRepo.movements[0]
		assert.Equal(t, inventory.MovementTypeIn, m.Type)
		assert.True(t, m.QuantityBefore.IsZero())
		assert.True(t, m.QuantityAfter.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "tester", m.PerformedBy)
	})

	t.Run("converts to canonical unit preserving value", func(t *testing.T) {
		service, levelRepo, lotRepo, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 1, 1.0, time.Now())

		// 500 g at 0.002/g into a KG-canonical level
		_, err := service.CreateLot(ctx, CreateLotRequest{
			LotNumber:   "L2",
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(500),
			Unit:        "G",
			UnitCost:    decimal.NewFromFloat(0.002),
		}, "tester")
		require.NoError(t, err)

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromFloat(1.5)))

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L2")
		require.NoError(t, err)
		assert.Equal(t, "KG", lot.Unit)
		assert.True(t, lot.RemainingQuantity.Equal(decimal.NewFromFloat(0.5)))
		// 500 g * 0.002 = 1.0 total value, so 2.0 per KG
		assert.True(t, lot.UnitCost.Equal(decimal.NewFromInt(2)))
	})

	t.Run("rejects cross-family unit without opt-in", func(t *testing.T) {
		service, _, _, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 1, 1.0, time.Now())

		_, err := service.CreateLot(ctx, CreateLotRequest{
			LotNumber:   "L2",
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(5),
			Unit:        "L",
			UnitCost:    decimal.NewFromInt(1),
		}, "tester")
		assert.ErrorIs(t, err, shared.ErrUnitMismatch)
	})

	t.Run("cross-family unit kept raw with opt-in and a warning", func(t *testing.T) {
		levelRepo := newMemLevelRepo()
		lotRepo := newMemLotRepo()
		movementRepo := &memMovementRepo{}
		core, logs := observer.New(zap.WarnLevel)
		service := NewStockService(
			NewNoOpTransactionScope(levelRepo, lotRepo, movementRepo),
			levelRepo, lotRepo, movementRepo, zap.New(core))
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 1, 1.0, time.Now())

		_, err := service.CreateLot(ctx, CreateLotRequest{
			LotNumber:        "L2",
			ProductID:        productID,
			WarehouseID:      warehouseID,
			Quantity:         decimal.NewFromInt(5),
			Unit:             "L",
			UnitCost:         decimal.NewFromInt(1),
			AllowUnconverted: true,
		}, "tester")
		require.NoError(t, err)

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L2")
		require.NoError(t, err)
		assert.Equal(t, "L", lot.Unit)

		entries := logs.FilterMessage("lot kept in its original unit").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "L", entries[0].ContextMap()["unit"])
		assert.Equal(t, "KG", entries[0].ContextMap()["canonical_unit"])
	})

	t.Run("rejects duplicate lot number per product", func(t *testing.T) {
		service, _, _, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		_, err := service.CreateLot(ctx, CreateLotRequest{
			LotNumber:   "L1",
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(10),
			Unit:        "KG",
			UnitCost:    decimal.NewFromInt(1),
		}, "tester")
		require.Error(t, err)
	})

	t.Run("rejects unknown unit", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.CreateLot(ctx, CreateLotRequest{
			LotNumber:   "L1",
			ProductID:   uuid.New(),
			WarehouseID: uuid.New(),
			Quantity:    decimal.NewFromInt(10),
			Unit:        "FURLONG",
			UnitCost:    decimal.NewFromInt(1),
		}, "tester")
		require.Error(t, err)
	})
}

func TestStockService_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes across lots FIFO with one movement per lot", func(t *testing.T) {
		service, levelRepo, lotRepo, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		base := time.Now().Add(-3 * time.Hour)
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, base)
		receiveLot(t, service, productID, warehouseID, "L2", 10, 2.0, base.Add(time.Hour))
		receiveLot(t, service, productID, warehouseID, "L3", 10, 3.0, base.Add(2*time.Hour))

		resp, err := service.Consume(ctx, ConsumeStockRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(15),
		}, "tester")

		require.NoError(t, err)
		require.Len(t, resp.Consumptions, 2)
		assert.Equal(t, "L1", resp.Consumptions[0].LotNumber)
		assert.True(t, resp.Consumptions[0].Depleted)
		assert.Equal(t, "L2", resp.Consumptions[1].LotNumber)
		assert.True(t, resp.Consumptions[1].QuantityTaken.Equal(decimal.NewFromInt(5)))
		assert.True(t, resp.RemainingQuantity.Equal(decimal.NewFromInt(15)))

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(15)))

		// lot store agrees with the aggregate
		lots, err := lotRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		total := decimal.Zero
		for _, lot := range lots {
			if lot.IsAvailable() {
				total = total.Add(lot.RemainingQuantity)
			}
		}
		assert.True(t, total.Equal(level.Quantity))

		// 3 receipts + 2 consumption movements, before/after chain intact
		require.Len(t, movementRepo.movements, 5)
		consumptions := movementRepo.movements[3:]
		assert.True(t, consumptions[0].QuantityBefore.Equal(decimal.NewFromInt(30)))
		assert.True(t, consumptions[0].QuantityAfter.Equal(decimal.NewFromInt(20)))
		assert.True(t, consumptions[1].QuantityBefore.Equal(decimal.NewFromInt(20)))
		assert.True(t, consumptions[1].QuantityAfter.Equal(decimal.NewFromInt(15)))
	})

	t.Run("insufficient stock consumes nothing", func(t *testing.T) {
		service, levelRepo, lotRepo, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		_, err := service.Consume(ctx, ConsumeStockRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(11),
		}, "tester")

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L1")
		require.NoError(t, err)
		assert.True(t, lot.RemainingQuantity.Equal(decimal.NewFromInt(10)))

		// only the receipt movement exists
		assert.Len(t, movementRepo.movements, 1)
	})

	t.Run("consumes in a converted unit", func(t *testing.T) {
		service, levelRepo, _, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		_, err := service.Consume(ctx, ConsumeStockRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(2500),
			Unit:        "G",
		}, "tester")
		require.NoError(t, err)

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromFloat(7.5)))
	})

	t.Run("unknown pair returns not found", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.Consume(ctx, ConsumeStockRequest{
			ProductID:   uuid.New(),
			WarehouseID: uuid.New(),
			Quantity:    decimal.NewFromInt(1),
		}, "tester")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStockService_QuarantineRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("quarantine removes the lot from available stock", func(t *testing.T) {
		service, levelRepo, lotRepo, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		base := time.Now().Add(-2 * time.Hour)
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, base)
		receiveLot(t, service, productID, warehouseID, "L2", 5, 2.0, base.Add(time.Hour))

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L1")
		require.NoError(t, err)

		resp, err := service.QuarantineLot(ctx, lot.ID, "damaged pallet", "qa")

		require.NoError(t, err)
		assert.Equal(t, "quarantine", resp.Status)

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, level.TotalValue.Equal(decimal.NewFromInt(10)))

		last := movementRepo.movements[len(movementRepo.movements)-1]
		assert.Equal(t, inventory.MovementTypeQuarantine, last.Type)
		assert.Equal(t, "L1", last.LotNumber)
		assert.True(t, last.QuantityBefore.Equal(decimal.NewFromInt(15)))
		assert.True(t, last.QuantityAfter.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, "qa", last.PerformedBy)

		// the quarantined lot no longer feeds consumption
		_, err = service.Consume(ctx, ConsumeStockRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(6),
		}, "tester")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("release returns the lot to available stock", func(t *testing.T) {
		service, levelRepo, lotRepo, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L1")
		require.NoError(t, err)
		_, err = service.QuarantineLot(ctx, lot.ID, "pending inspection", "qa")
		require.NoError(t, err)

		resp, err := service.ReleaseLot(ctx, lot.ID, "inspection passed", "qa")

		require.NoError(t, err)
		assert.Equal(t, "available", resp.Status)

		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))

		last := movementRepo.movements[len(movementRepo.movements)-1]
		assert.Equal(t, inventory.MovementTypeRelease, last.Type)
		assert.True(t, last.QuantityBefore.IsZero())
		assert.True(t, last.QuantityAfter.Equal(decimal.NewFromInt(10)))

		// released stock is consumable again
		consumed, err := service.Consume(ctx, ConsumeStockRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.NewFromInt(6),
		}, "tester")
		require.NoError(t, err)
		assert.True(t, consumed.RemainingQuantity.Equal(decimal.NewFromInt(4)))
	})

	t.Run("only available lots can be quarantined", func(t *testing.T) {
		service, _, lotRepo, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L1")
		require.NoError(t, err)
		_, err = service.QuarantineLot(ctx, lot.ID, "damaged", "qa")
		require.NoError(t, err)

		_, err = service.QuarantineLot(ctx, lot.ID, "damaged", "qa")
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	})

	t.Run("only quarantined lots can be released", func(t *testing.T) {
		service, _, lotRepo, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		lot, err := lotRepo.FindByLotNumber(ctx, productID, "L1")
		require.NoError(t, err)

		_, err = service.ReleaseLot(ctx, lot.ID, "", "qa")
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
	})

	t.Run("unknown lot returns not found", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.QuarantineLot(ctx, uuid.New(), "damaged", "qa")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestStockService_Recompute(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs drift and records an adjustment", func(t *testing.T) {
		service, levelRepo, _, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		// corrupt the aggregate to simulate drift
		level, err := levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		level.Quantity = decimal.NewFromInt(13)
		require.NoError(t, levelRepo.Save(ctx, level))

		resp, err := service.Recompute(ctx, RecomputeRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
		}, "tester")

		require.NoError(t, err)
		assert.True(t, resp.Drift.Equal(decimal.NewFromInt(-3)))
		assert.True(t, resp.NewQuantity.Equal(decimal.NewFromInt(10)))

		last := movementRepo.movements[len(movementRepo.movements)-1]
		assert.Equal(t, inventory.MovementTypeAdjustment, last.Type)
		assert.True(t, last.Quantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("zero drift records no movement", func(t *testing.T) {
		service, _, _, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		resp, err := service.Recompute(ctx, RecomputeRequest{
			ProductID:   productID,
			WarehouseID: warehouseID,
		}, "tester")

		require.NoError(t, err)
		assert.True(t, resp.Drift.IsZero())
		assert.Len(t, movementRepo.movements, 1)
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("lot-tracked levels are rejected", func(t *testing.T) {
		service, _, _, _ := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()
		receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())

		_, err := service.Adjust(ctx, AdjustStockRequest{
			ProductID:      productID,
			WarehouseID:    warehouseID,
			ActualQuantity: decimal.NewFromInt(7),
			Reason:         "count",
		}, "tester")
		require.Error(t, err)
	})

	t.Run("adjusts a plain level and records the difference", func(t *testing.T) {
		service, levelRepo, _, movementRepo := newTestService()
		productID, warehouseID := uuid.New(), uuid.New()

		level, err := inventory.NewStockLevel(productID, warehouseID, "PCS", false)
		require.NoError(t, err)
		require.NoError(t, level.Increase(decimal.NewFromInt(10), decimal.NewFromInt(1)))
		level.ClearDomainEvents()
		require.NoError(t, levelRepo.Create(ctx, level))

		resp, err := service.Adjust(ctx, AdjustStockRequest{
			ProductID:      productID,
			WarehouseID:    warehouseID,
			ActualQuantity: decimal.NewFromInt(7),
			Reason:         "cycle count",
		}, "tester")

		require.NoError(t, err)
		assert.True(t, resp.Difference.Equal(decimal.NewFromInt(-3)))
		assert.True(t, resp.NewQuantity.Equal(decimal.NewFromInt(7)))

		require.Len(t, movementRepo.movements, 1)
		m := movementRepo.movements[0]
		assert.Equal(t, inventory.MovementTypeAdjustment, m.Type)
		assert.True(t, m.QuantityBefore.Equal(decimal.NewFromInt(10)))
		assert.True(t, m.QuantityAfter.Equal(decimal.NewFromInt(7)))
	})
}

func TestStockService_ListMovements(t *testing.T) {
	ctx := context.Background()
	service, _, _, _ := newTestService()
	productID, warehouseID := uuid.New(), uuid.New()
	otherProduct := uuid.New()
	receiveLot(t, service, productID, warehouseID, "L1", 10, 1.0, time.Now())
	receiveLot(t, service, otherProduct, warehouseID, "L2", 5, 1.0, time.Now())

	movements, total, err := service.ListMovements(ctx, MovementListFilter{ProductID: &productID})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, movements, 1)
	assert.Equal(t, "L1", movements[0].LotNumber)
}
