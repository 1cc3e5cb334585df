package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// SuggestionStatus represents the review state of a replenishment suggestion
type SuggestionStatus string

const (
	SuggestionStatusPending  SuggestionStatus = "pending"
	SuggestionStatusApproved SuggestionStatus = "approved"
	SuggestionStatusOrdered  SuggestionStatus = "ordered"
	SuggestionStatusRejected SuggestionStatus = "rejected"
)

// IsValid checks if the status is a valid SuggestionStatus
func (s SuggestionStatus) IsValid() bool {
	switch s {
	case SuggestionStatusPending, SuggestionStatusApproved,
		SuggestionStatusOrdered, SuggestionStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of SuggestionStatus
func (s SuggestionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SuggestionStatus) CanTransitionTo(target SuggestionStatus) bool {
	switch s {
	case SuggestionStatusPending:
		return target == SuggestionStatusApproved || target == SuggestionStatusRejected
	case SuggestionStatusApproved:
		return target == SuggestionStatusOrdered
	case SuggestionStatusOrdered, SuggestionStatusRejected:
		return false // terminal states
	}
	return false
}

// Priority ranks how urgently a suggestion should be acted on
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// String returns the string representation of Priority
func (p Priority) String() string {
	return string(p)
}

// ComputePriority ranks a shortfall against the minimum stock alert level.
// At or below half the alert level the shortage is critical, at or below
// three quarters it is high, anything else below the effective threshold is
// medium. Low is reserved for manually created suggestions.
func ComputePriority(quantity, minStockAlert decimal.Decimal) Priority {
	if minStockAlert.LessThanOrEqual(decimal.Zero) {
		return PriorityMedium
	}
	ratio := quantity.Div(minStockAlert)
	switch {
	case ratio.LessThanOrEqual(decimal.NewFromFloat(0.5)):
		return PriorityCritical
	case ratio.LessThanOrEqual(decimal.NewFromFloat(0.75)):
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// SuggestedQuantity computes how much to reorder. The base is the configured
// reorder quantity, falling back to twice the minimum stock alert, and the
// result never falls below the supplier's minimum order quantity.
func SuggestedQuantity(reorderQuantity, minStockAlert, supplierMOQ decimal.Decimal) decimal.Decimal {
	base := reorderQuantity
	if base.LessThanOrEqual(decimal.Zero) {
		base = minStockAlert.Mul(decimal.NewFromInt(2))
	}
	return decimal.Max(base, supplierMOQ)
}

// Suggestion is a replenishment proposal produced by the threshold scan or
// created manually. It moves pending -> approved -> ordered, or pending ->
// rejected; ordered and rejected are terminal.
type Suggestion struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_suggestion_scope,priority:1"`
	WarehouseID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_suggestion_scope,priority:2"`
	SupplierID        uuid.UUID        `gorm:"type:uuid;not null"`
	CurrentQuantity   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ThresholdQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	SuggestedQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Priority          Priority         `gorm:"type:varchar(20);not null;index"`
	Status            SuggestionStatus `gorm:"type:varchar(20);not null;index"`
	Reason            string           `gorm:"type:varchar(500)"`
	ReviewedBy        string           `gorm:"type:varchar(100)"`
	ReviewedAt        *time.Time
	PurchaseOrderID   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Suggestion) TableName() string {
	return "replenishment_suggestions"
}

// NewSuggestion creates a pending replenishment suggestion
func NewSuggestion(
	productID, warehouseID, supplierID uuid.UUID,
	currentQuantity, thresholdQuantity, suggestedQuantity, unitCost decimal.Decimal,
	priority Priority,
	reason string,
) (*Suggestion, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.ErrNoSupplierSource
	}
	if suggestedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	s := &Suggestion{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		SupplierID:        supplierID,
		CurrentQuantity:   currentQuantity,
		ThresholdQuantity: thresholdQuantity,
		SuggestedQuantity: suggestedQuantity,
		UnitCost:          unitCost,
		Priority:          priority,
		Status:            SuggestionStatusPending,
		Reason:            reason,
	}
	s.AddDomainEvent(NewSuggestionCreatedEvent(s))
	return s, nil
}

// EstimatedCost returns suggested quantity times catalog unit cost
func (s *Suggestion) EstimatedCost() decimal.Decimal {
	return s.SuggestedQuantity.Mul(s.UnitCost).Round(4)
}

// Approve moves a pending suggestion to approved
func (s *Suggestion) Approve(reviewer string) error {
	if reviewer == "" {
		return shared.NewDomainError("INVALID_ACTOR", "Reviewer is required")
	}
	if !s.Status.CanTransitionTo(SuggestionStatusApproved) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot approve suggestion in status "+s.Status.String())
	}

	now := time.Now()
	s.Status = SuggestionStatusApproved
	s.ReviewedBy = reviewer
	s.ReviewedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSuggestionApprovedEvent(s))
	return nil
}

// Reject moves a pending suggestion to rejected with a reason
func (s *Suggestion) Reject(reviewer, reason string) error {
	if reviewer == "" {
		return shared.NewDomainError("INVALID_ACTOR", "Reviewer is required")
	}
	if !s.Status.CanTransitionTo(SuggestionStatusRejected) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot reject suggestion in status "+s.Status.String())
	}

	now := time.Now()
	s.Status = SuggestionStatusRejected
	s.ReviewedBy = reviewer
	s.ReviewedAt = &now
	if reason != "" {
		s.Reason = reason
	}
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSuggestionRejectedEvent(s))
	return nil
}

// MarkOrdered links an approved suggestion to the draft purchase order
// created from it
func (s *Suggestion) MarkOrdered(purchaseOrderID uuid.UUID) error {
	if purchaseOrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Purchase order ID cannot be empty")
	}
	if !s.Status.CanTransitionTo(SuggestionStatusOrdered) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot mark suggestion ordered in status "+s.Status.String())
	}

	s.Status = SuggestionStatusOrdered
	s.PurchaseOrderID = &purchaseOrderID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSuggestionOrderedEvent(s))
	return nil
}

// IsOpen returns true while the suggestion still awaits a decision or order
func (s *Suggestion) IsOpen() bool {
	return s.Status == SuggestionStatusPending || s.Status == SuggestionStatusApproved
}
