package replenishment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/replenishment"
	"github.com/mrp/backend/internal/domain/shared"
)

// Skip reason constants for the threshold scan
const (
	SkipReasonNoSupplier     = "NO_SUPPLIER_SOURCE"
	SkipReasonOpenSuggestion = "OPEN_SUGGESTION_EXISTS"
	SkipReasonNoQuantity     = "NO_POSITIVE_QUANTITY"
)

// ReplenishmentService runs the threshold scan and the suggestion review
// workflow. The scan is idempotent: a product-warehouse pair with an open
// suggestion is skipped until that suggestion is resolved.
type ReplenishmentService struct {
	txScope        TransactionScope
	suggestionRepo replenishment.SuggestionRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewReplenishmentService creates a new ReplenishmentService
func NewReplenishmentService(
	txScope TransactionScope,
	suggestionRepo replenishment.SuggestionRepository,
	logger *zap.Logger,
) *ReplenishmentService {
	return &ReplenishmentService{
		txScope:        txScope,
		suggestionRepo: suggestionRepo,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReplenishmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReplenishmentService) publishDomainEvents(ctx context.Context, suggestion *replenishment.Suggestion) {
	if s.eventPublisher == nil {
		return
	}
	events := suggestion.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	suggestion.ClearDomainEvents()
}

// GenerateSuggestions scans stock levels at or below their reorder threshold
// and creates a pending suggestion per low product-warehouse pair. Pairs with
// an open suggestion or without an active supplier are skipped and reported.
func (s *ReplenishmentService) GenerateSuggestions(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	response := &GenerateResponse{
		Suggestions: make([]SuggestionResponse, 0),
		SkipReasons: make([]SkippedProduct, 0),
	}
	created := make([]*replenishment.Suggestion, 0)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		levels, err := repos.LevelRepo().FindBelowReorderThreshold(ctx)
		if err != nil {
			return err
		}

		for i := range levels {
			level := &levels[i]
			if req.WarehouseID != nil && level.WarehouseID != *req.WarehouseID {
				continue
			}
			response.Scanned++

			open, err := repos.SuggestionRepo().FindOpenByProductAndWarehouse(ctx, level.ProductID, level.WarehouseID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if open != nil {
				response.Skipped++
				response.SkipReasons = append(response.SkipReasons, SkippedProduct{
					ProductID:   level.ProductID,
					WarehouseID: level.WarehouseID,
					Reason:      SkipReasonOpenSuggestion,
				})
				continue
			}

			entries, err := repos.CatalogRepo().FindByProduct(ctx, level.ProductID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			source, err := replenishment.ResolveSupplier(entries)
			if err != nil {
				response.Skipped++
				response.SkipReasons = append(response.SkipReasons, SkippedProduct{
					ProductID:   level.ProductID,
					WarehouseID: level.WarehouseID,
					Reason:      SkipReasonNoSupplier,
				})
				s.logger.Warn("low stock product has no supplier source",
					zap.String("product_id", level.ProductID.String()),
					zap.String("warehouse_id", level.WarehouseID.String()),
				)
				continue
			}

			quantity := replenishment.SuggestedQuantity(
				level.ReorderQuantity, level.MinStockAlert, source.MinOrderQty)
			priority := replenishment.ComputePriority(level.Quantity, level.MinStockAlert)

			suggestion, err := replenishment.NewSuggestion(
				level.ProductID, level.WarehouseID, source.SupplierID,
				level.Quantity, level.ReorderThreshold(), quantity, source.UnitCost,
				priority, "below reorder threshold")
			if err != nil {
				// a pair that cannot form a valid suggestion must not
				// abort the rest of the scan
				response.Skipped++
				response.SkipReasons = append(response.SkipReasons, SkippedProduct{
					ProductID:   level.ProductID,
					WarehouseID: level.WarehouseID,
					Reason:      SkipReasonNoQuantity,
				})
				s.logger.Warn("low stock product yields no orderable suggestion",
					zap.String("product_id", level.ProductID.String()),
					zap.String("warehouse_id", level.WarehouseID.String()),
					zap.Error(err),
				)
				continue
			}
			if err := repos.SuggestionRepo().Create(ctx, suggestion); err != nil {
				return err
			}

			created = append(created, suggestion)
			response.Created++
			response.Suggestions = append(response.Suggestions, ToSuggestionResponse(suggestion))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, suggestion := range created {
		s.publishDomainEvents(ctx, suggestion)
	}
	s.logger.Info("replenishment scan finished",
		zap.Int("scanned", response.Scanned),
		zap.Int("created", response.Created),
		zap.Int("skipped", response.Skipped),
	)
	return response, nil
}

// Approve approves a pending suggestion and creates a draft purchase order
// from it in one transaction. The suggestion ends in the ordered state,
// linked to the order.
func (s *ReplenishmentService) Approve(ctx context.Context, suggestionID uuid.UUID, reviewer string) (*ApproveResponse, error) {
	var suggestion *replenishment.Suggestion
	var order *replenishment.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		suggestion, err = repos.SuggestionRepo().FindByID(ctx, suggestionID)
		if err != nil {
			return err
		}
		if err := suggestion.Approve(reviewer); err != nil {
			return err
		}

		order, err = replenishment.NewDraftPurchaseOrder(suggestion.SupplierID, suggestion.WarehouseID, reviewer)
		if err != nil {
			return err
		}
		level, err := repos.LevelRepo().FindByProductAndWarehouse(ctx, suggestion.ProductID, suggestion.WarehouseID)
		unit := "PCS"
		if err == nil {
			unit = level.CanonicalUnit
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if err := order.AddItem(suggestion.ProductID, suggestion.SuggestedQuantity, suggestion.UnitCost, unit); err != nil {
			return err
		}
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return err
		}

		if err := suggestion.MarkOrdered(order.ID); err != nil {
			return err
		}
		return repos.SuggestionRepo().Save(ctx, suggestion)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, suggestion)
	s.logger.Info("replenishment suggestion approved",
		zap.String("suggestion_id", suggestion.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("reviewer", reviewer),
	)
	return &ApproveResponse{
		Suggestion: ToSuggestionResponse(suggestion),
		Order:      ToPurchaseOrderResponse(order),
	}, nil
}

// Reject rejects a pending suggestion with an optional reason
func (s *ReplenishmentService) Reject(ctx context.Context, suggestionID uuid.UUID, reviewer, reason string) (*SuggestionResponse, error) {
	var suggestion *replenishment.Suggestion
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		suggestion, err = repos.SuggestionRepo().FindByID(ctx, suggestionID)
		if err != nil {
			return err
		}
		if err := suggestion.Reject(reviewer, reason); err != nil {
			return err
		}
		return repos.SuggestionRepo().Save(ctx, suggestion)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, suggestion)
	response := ToSuggestionResponse(suggestion)
	return &response, nil
}

// List returns suggestions matching the filter
func (s *ReplenishmentService) List(ctx context.Context, filter SuggestionListFilter) ([]SuggestionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := replenishment.SuggestionFilter{
		WarehouseID: filter.WarehouseID,
		ProductID:   filter.ProductID,
		Status:      replenishment.SuggestionStatus(filter.Status),
		Priority:    replenishment.Priority(filter.Priority),
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}

	suggestions, err := s.suggestionRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.suggestionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SuggestionResponse, 0, len(suggestions))
	for i := range suggestions {
		responses = append(responses, ToSuggestionResponse(&suggestions[i]))
	}
	return responses, total, nil
}

// Get retrieves a single suggestion by ID
func (s *ReplenishmentService) Get(ctx context.Context, suggestionID uuid.UUID) (*SuggestionResponse, error) {
	suggestion, err := s.suggestionRepo.FindByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	response := ToSuggestionResponse(suggestion)
	return &response, nil
}
