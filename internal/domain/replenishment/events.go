package replenishment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSuggestion = "ReplenishmentSuggestion"

// Event type constants
const (
	EventTypeSuggestionCreated  = "ReplenishmentSuggestionCreated"
	EventTypeSuggestionApproved = "ReplenishmentSuggestionApproved"
	EventTypeSuggestionRejected = "ReplenishmentSuggestionRejected"
	EventTypeSuggestionOrdered  = "ReplenishmentSuggestionOrdered"
)

// SuggestionCreatedEvent is raised when the scan proposes a replenishment
type SuggestionCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	Priority          Priority        `json:"priority"`
}

// NewSuggestionCreatedEvent creates a new SuggestionCreatedEvent
func NewSuggestionCreatedEvent(s *Suggestion) *SuggestionCreatedEvent {
	return &SuggestionCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSuggestionCreated, AggregateTypeSuggestion, s.ID),
		ProductID:         s.ProductID,
		WarehouseID:       s.WarehouseID,
		SupplierID:        s.SupplierID,
		SuggestedQuantity: s.SuggestedQuantity,
		Priority:          s.Priority,
	}
}

// EventType returns the event type name
func (e *SuggestionCreatedEvent) EventType() string {
	return EventTypeSuggestionCreated
}

// SuggestionApprovedEvent is raised when a reviewer approves a suggestion
type SuggestionApprovedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID `json:"product_id"`
	ReviewedBy string    `json:"reviewed_by"`
}

// NewSuggestionApprovedEvent creates a new SuggestionApprovedEvent
func NewSuggestionApprovedEvent(s *Suggestion) *SuggestionApprovedEvent {
	return &SuggestionApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSuggestionApproved, AggregateTypeSuggestion, s.ID),
		ProductID:       s.ProductID,
		ReviewedBy:      s.ReviewedBy,
	}
}

// EventType returns the event type name
func (e *SuggestionApprovedEvent) EventType() string {
	return EventTypeSuggestionApproved
}

// SuggestionRejectedEvent is raised when a reviewer rejects a suggestion
type SuggestionRejectedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID `json:"product_id"`
	ReviewedBy string    `json:"reviewed_by"`
	Reason     string    `json:"reason"`
}

// NewSuggestionRejectedEvent creates a new SuggestionRejectedEvent
func NewSuggestionRejectedEvent(s *Suggestion) *SuggestionRejectedEvent {
	return &SuggestionRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSuggestionRejected, AggregateTypeSuggestion, s.ID),
		ProductID:       s.ProductID,
		ReviewedBy:      s.ReviewedBy,
		Reason:          s.Reason,
	}
}

// EventType returns the event type name
func (e *SuggestionRejectedEvent) EventType() string {
	return EventTypeSuggestionRejected
}

// SuggestionOrderedEvent is raised when a draft purchase order is created
// from an approved suggestion
type SuggestionOrderedEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID  `json:"product_id"`
	PurchaseOrderID *uuid.UUID `json:"purchase_order_id"`
}

// NewSuggestionOrderedEvent creates a new SuggestionOrderedEvent
func NewSuggestionOrderedEvent(s *Suggestion) *SuggestionOrderedEvent {
	return &SuggestionOrderedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSuggestionOrdered, AggregateTypeSuggestion, s.ID),
		ProductID:       s.ProductID,
		PurchaseOrderID: s.PurchaseOrderID,
	}
}

// EventType returns the event type name
func (e *SuggestionOrderedEvent) EventType() string {
	return EventTypeSuggestionOrdered
}
