package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/inventory"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// StockService handles stock-related business operations. All mutating
// operations run inside a transaction scope: the stock level row is locked,
// lots and the level are updated together, and the matching ledger records
// are appended in the same transaction.
type StockService struct {
	txScope        TransactionScope
	levelRepo      inventory.StockLevelRepository
	lotRepo        inventory.StockLotRepository
	movementRepo   inventory.MovementRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	txScope TransactionScope,
	levelRepo inventory.StockLevelRepository,
	lotRepo inventory.StockLotRepository,
	movementRepo inventory.MovementRepository,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		txScope:      txScope,
		levelRepo:    levelRepo,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all pending events from the stock level.
// Errors are logged by the event bus, not propagated.
func (s *StockService) publishDomainEvents(ctx context.Context, level *inventory.StockLevel) {
	if s.eventPublisher == nil {
		return
	}
	events := level.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	level.ClearDomainEvents()
}

// toCanonical converts a quantity from the request unit into the stock
// level's canonical unit. The unit cost scales inversely so that total value
// is preserved. With allowUnconverted set, a cross-family request falls back
// to the raw quantity and unit; the returned flag reports that fallback.
func toCanonical(quantity, unitCost decimal.Decimal, fromUnit, canonicalUnit string, allowUnconverted bool) (decimal.Decimal, decimal.Decimal, string, bool, error) {
	received, err := valueobject.NewQuantity(quantity, fromUnit)
	if err != nil {
		return decimal.Zero, decimal.Zero, "", false, shared.ErrInvalidQuantity
	}
	converted, err := received.ConvertTo(canonicalUnit)
	if err != nil {
		if errors.Is(err, shared.ErrUnitMismatch) && allowUnconverted {
			return quantity, unitCost, fromUnit, true, nil
		}
		return decimal.Zero, decimal.Zero, "", false, err
	}
	if converted.Amount().Equal(quantity) {
		return converted.Amount(), unitCost, converted.Unit(), false, nil
	}
	// cost per canonical unit = total value / converted quantity
	scaledCost := unitCost.Mul(quantity).Div(converted.Amount()).Round(4)
	return converted.Amount(), scaledCost, converted.Unit(), false, nil
}

// CreateLot receives stock into a warehouse as a new lot. The quantity is
// converted to the stock level's canonical unit before it is stored; the
// aggregate is increased and an "in" movement is appended atomically.
func (s *StockService) CreateLot(ctx context.Context, req CreateLotRequest, actor string) (*LotResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if _, err := valueobject.ParseUnit(req.Unit); err != nil {
		return nil, err
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	referenceType := inventory.ReferenceType(req.ReferenceType)
	if referenceType == "" {
		referenceType = inventory.ReferenceTypeReceipt
	}

	var created *inventory.StockLot
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.LotRepo().FindByLotNumber(ctx, req.ProductID, req.LotNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("DUPLICATE_LOT", "Lot number already exists for this product")
		}

		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if errors.Is(err, shared.ErrNotFound) {
			level, err = inventory.NewStockLevel(req.ProductID, req.WarehouseID, req.Unit, true)
			if err != nil {
				return err
			}
			if err := repos.LevelRepo().Create(ctx, level); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		quantity, unitCost, unit, unconverted, err := toCanonical(
			req.Quantity, req.UnitCost, req.Unit, level.CanonicalUnit, req.AllowUnconverted)
		if err != nil {
			return err
		}
		if unconverted {
			s.logger.Warn("lot kept in its original unit",
				zap.String("lot_number", req.LotNumber),
				zap.String("product_id", req.ProductID.String()),
				zap.String("unit", unit),
				zap.String("canonical_unit", level.CanonicalUnit),
			)
		}

		lot, err := inventory.NewStockLot(
			req.LotNumber, req.ProductID, req.WarehouseID,
			quantity, unitCost, unit, receivedAt, req.ExpiryDate)
		if err != nil {
			return err
		}
		if err := repos.LotRepo().Create(ctx, lot); err != nil {
			return err
		}

		before := level.Quantity
		if err := level.Increase(quantity, unitCost); err != nil {
			return err
		}
		if err := repos.LevelRepo().Save(ctx, level); err != nil {
			return err
		}

		movement, err := inventory.NewMovement(
			req.ProductID, req.WarehouseID, inventory.MovementTypeIn,
			quantity, before, level.Quantity, unitCost,
			req.LotNumber, referenceType, req.ReferenceID, actor)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}

		created = lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)
	response := ToLotResponse(created)
	return &response, nil
}

// Consume draws stock from lots in FIFO order. The allocation is planned
// against a snapshot first; if any part cannot be satisfied nothing is
// consumed. One consumption movement is appended per lot drawn from.
func (s *StockService) Consume(ctx context.Context, req ConsumeStockRequest, actor string) (*ConsumeStockResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	referenceType := inventory.ReferenceType(req.ReferenceType)
	if referenceType == "" {
		referenceType = inventory.ReferenceTypeManual
	}

	var response *ConsumeStockResponse
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		quantity := req.Quantity
		if req.Unit != "" && req.Unit != level.CanonicalUnit {
			quantity, err = valueobject.ConvertCode(req.Quantity, req.Unit, level.CanonicalUnit)
			if err != nil {
				return err
			}
		}

		lots, err := repos.LotRepo().FindConsumable(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		plan, err := inventory.PlanFIFOConsumption(quantity, lots)
		if err != nil {
			return err
		}

		lotsByID := make(map[uuid.UUID]*inventory.StockLot, len(lots))
		for i := range lots {
			lotsByID[lots[i].ID] = &lots[i]
		}

		touched := make([]*inventory.StockLot, 0, len(plan.Consumptions))
		movements := make([]*inventory.Movement, 0, len(plan.Consumptions))
		running := level.Quantity
		for _, c := range plan.Consumptions {
			lot, ok := lotsByID[c.LotID]
			if !ok {
				return shared.NewDomainError("LOT_NOT_FOUND", "Planned lot disappeared during allocation")
			}
			if err := lot.Take(c.QuantityTaken); err != nil {
				return err
			}
			touched = append(touched, lot)

			before := running
			running = running.Sub(c.QuantityTaken)
			movement, err := inventory.NewMovement(
				req.ProductID, req.WarehouseID, inventory.MovementTypeConsumption,
				c.QuantityTaken, before, running, c.UnitCost,
				c.LotNumber, referenceType, req.ReferenceID, actor)
			if err != nil {
				return err
			}
			movements = append(movements, movement)
		}

		if err := repos.LotRepo().SaveAll(ctx, touched); err != nil {
			return err
		}
		if err := level.Decrease(plan.TotalQuantity, plan.TotalCost); err != nil {
			return err
		}
		if err := repos.LevelRepo().Save(ctx, level); err != nil {
			return err
		}
		if err := repos.MovementRepo().AppendAll(ctx, movements); err != nil {
			return err
		}

		entries := make([]LotConsumptionEntry, 0, len(plan.Consumptions))
		for _, c := range plan.Consumptions {
			entries = append(entries, LotConsumptionEntry{
				LotID:         c.LotID,
				LotNumber:     c.LotNumber,
				QuantityTaken: c.QuantityTaken,
				UnitCost:      c.UnitCost,
				TotalCost:     c.TotalCost,
				Depleted:      c.Depletes,
			})
		}
		response = &ConsumeStockResponse{
			ProductID:           req.ProductID,
			WarehouseID:         req.WarehouseID,
			TotalQuantity:       plan.TotalQuantity,
			TotalCost:           plan.TotalCost,
			WeightedAverageCost: plan.WeightedAverageCost,
			Consumptions:        entries,
			RemainingQuantity:   level.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)
	return response, nil
}

// QuarantineLot holds a lot back from consumption. The lot's remaining
// quantity leaves the available aggregate and a quarantine movement is
// appended, so that available stock stays equal to the sum of consumable
// lots.
func (s *StockService) QuarantineLot(ctx context.Context, lotID uuid.UUID, reason, actor string) (*LotResponse, error) {
	var lot *inventory.StockLot
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lot, err = repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, lot.ProductID, lot.WarehouseID)
		if err != nil {
			return err
		}

		quantity := lot.RemainingQuantity
		value := lot.TotalValue()
		if err := lot.Quarantine(); err != nil {
			return err
		}
		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}

		before := level.Quantity
		if err := level.Decrease(quantity, value); err != nil {
			return err
		}
		if err := repos.LevelRepo().Save(ctx, level); err != nil {
			return err
		}

		movement, err := inventory.NewMovement(
			lot.ProductID, lot.WarehouseID, inventory.MovementTypeQuarantine,
			quantity, before, level.Quantity, lot.UnitCost,
			lot.LotNumber, inventory.ReferenceTypeManual, reason, actor)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)
	s.logger.Info("lot quarantined",
		zap.String("lot_number", lot.LotNumber),
		zap.String("product_id", lot.ProductID.String()),
		zap.String("reason", reason),
	)
	response := ToLotResponse(lot)
	return &response, nil
}

// ReleaseLot returns a quarantined lot to available stock, reversing the
// quarantine: the remaining quantity re-enters the aggregate and a release
// movement is appended.
func (s *StockService) ReleaseLot(ctx context.Context, lotID uuid.UUID, reason, actor string) (*LotResponse, error) {
	var lot *inventory.StockLot
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lot, err = repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, lot.ProductID, lot.WarehouseID)
		if err != nil {
			return err
		}

		quantity := lot.RemainingQuantity
		if err := lot.Release(); err != nil {
			return err
		}
		if err := repos.LotRepo().Save(ctx, lot); err != nil {
			return err
		}

		before := level.Quantity
		if err := level.Increase(quantity, lot.UnitCost); err != nil {
			return err
		}
		if err := repos.LevelRepo().Save(ctx, level); err != nil {
			return err
		}

		movement, err := inventory.NewMovement(
			lot.ProductID, lot.WarehouseID, inventory.MovementTypeRelease,
			quantity, before, level.Quantity, lot.UnitCost,
			lot.LotNumber, inventory.ReferenceTypeManual, reason, actor)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)
	response := ToLotResponse(lot)
	return &response, nil
}

// Adjust corrects the on-hand quantity of a non-lot-tracked stock level to a
// counted value. Lot-tracked levels are repaired through Recompute instead,
// so that the aggregate never drifts away from its lots.
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest, actor string) (*AdjustStockResponse, error) {
	var response *AdjustStockResponse
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		if level.LotTracked {
			return shared.NewDomainError("LOT_TRACKED_LEVEL", "Lot-tracked stock is corrected by recompute, not adjustment")
		}

		difference, err := level.AdjustTo(req.ActualQuantity)
		if err != nil {
			return err
		}
		if err := repos.LevelRepo().Save(ctx, level); err != nil {
			return err
		}

		if !difference.IsZero() {
			movement, err := inventory.NewMovement(
				req.ProductID, req.WarehouseID, inventory.MovementTypeAdjustment,
				difference.Abs(), level.Quantity.Sub(difference), level.Quantity,
				level.LastUnitCost, "", inventory.ReferenceTypeStockTaking, req.Reason, actor)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}
		}

		response = &AdjustStockResponse{
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Difference:  difference,
			NewQuantity: level.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)
	return response, nil
}

// Recompute rebuilds a stock level from its lots and reports the repaired
// drift. A non-zero drift is recorded as an adjustment movement so that the
// ledger explains the correction.
func (s *StockService) Recompute(ctx context.Context, req RecomputeRequest, actor string) (*RecomputeResponse, error) {
	var response *RecomputeResponse
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		lots, err := repos.LotRepo().FindByProductAndWarehouse(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}

		before := level.Quantity
		drift := level.RecomputeFromLots(lots)
		if err := repos.LevelRepo().Save(ctx, level); err != nil {
			return err
		}

		if !drift.IsZero() {
			movement, err := inventory.NewMovement(
				req.ProductID, req.WarehouseID, inventory.MovementTypeAdjustment,
				drift.Abs(), before, level.Quantity, level.LastUnitCost,
				"", inventory.ReferenceTypeStockTaking, "recompute", actor)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}
		}

		response = &RecomputeResponse{
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Drift:       drift,
			NewQuantity: level.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)
	return response, nil
}

// SetThresholds updates the replenishment thresholds of a stock level
func (s *StockService) SetThresholds(ctx context.Context, req SetThresholdsRequest) (*StockLevelResponse, error) {
	var level *inventory.StockLevel
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.LevelRepo().FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		if err := level.SetThresholds(req.MinStockAlert, req.ReorderPoint, req.ReorderQuantity); err != nil {
			return err
		}
		return repos.LevelRepo().Save(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	response := ToStockLevelResponse(level)
	return &response, nil
}

// GetStockLevel retrieves the stock level for a product-warehouse pair
func (s *StockService) GetStockLevel(ctx context.Context, warehouseID, productID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.levelRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// ListLots lists all lots for a product-warehouse pair
func (s *StockService) ListLots(ctx context.Context, warehouseID, productID uuid.UUID) ([]LotResponse, error) {
	lots, err := s.lotRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	responses := make([]LotResponse, 0, len(lots))
	for i := range lots {
		responses = append(responses, ToLotResponse(&lots[i]))
	}
	return responses, nil
}

// ListMovements lists ledger records matching the filter in chronological order
func (s *StockService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := inventory.MovementFilter{
		ProductID:   filter.ProductID,
		WarehouseID: filter.WarehouseID,
		LotNumber:   filter.LotNumber,
		Type:        inventory.MovementType(filter.Type),
		Since:       filter.Since,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}

	movements, err := s.movementRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}
