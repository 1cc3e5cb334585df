package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/replenishment"
)

// GenerateRequest narrows a threshold scan to a warehouse when set
type GenerateRequest struct {
	WarehouseID *uuid.UUID `json:"warehouse_id"`
}

// GenerateResponse summarizes a threshold scan
type GenerateResponse struct {
	Scanned     int                  `json:"scanned"`
	Created     int                  `json:"created"`
	Skipped     int                  `json:"skipped"`
	Suggestions []SuggestionResponse `json:"suggestions"`
	SkipReasons []SkippedProduct     `json:"skip_reasons,omitempty"`
}

// SkippedProduct explains why a low product produced no suggestion
type SkippedProduct struct {
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Reason      string    `json:"reason"`
}

// SuggestionListFilter represents filter options for the suggestion list
type SuggestionListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ProductID   *uuid.UUID `form:"product_id"`
	Status      string     `form:"status" binding:"omitempty,oneof=pending approved ordered rejected"`
	Priority    string     `form:"priority" binding:"omitempty,oneof=critical high medium low"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RejectRequest carries the reviewer's reason for rejecting a suggestion
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SuggestionResponse represents a suggestion in API responses
type SuggestionResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	ThresholdQuantity decimal.Decimal `json:"threshold_quantity"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	Priority          string          `json:"priority"`
	Status            string          `json:"status"`
	Reason            string          `json:"reason,omitempty"`
	ReviewedBy        string          `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
	PurchaseOrderID   *uuid.UUID      `json:"purchase_order_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToSuggestionResponse converts a Suggestion to its response form
func ToSuggestionResponse(s *replenishment.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:                s.ID,
		ProductID:         s.ProductID,
		WarehouseID:       s.WarehouseID,
		SupplierID:        s.SupplierID,
		CurrentQuantity:   s.CurrentQuantity,
		ThresholdQuantity: s.ThresholdQuantity,
		SuggestedQuantity: s.SuggestedQuantity,
		UnitCost:          s.UnitCost,
		EstimatedCost:     s.EstimatedCost(),
		Priority:          s.Priority.String(),
		Status:            s.Status.String(),
		Reason:            s.Reason,
		ReviewedBy:        s.ReviewedBy,
		ReviewedAt:        s.ReviewedAt,
		PurchaseOrderID:   s.PurchaseOrderID,
		CreatedAt:         s.CreatedAt,
	}
}

// ApproveResponse reports the approval and the draft order created from it
type ApproveResponse struct {
	Suggestion SuggestionResponse    `json:"suggestion"`
	Order      PurchaseOrderResponse `json:"order"`
}

// PurchaseOrderResponse represents a draft purchase order in API responses
type PurchaseOrderResponse struct {
	ID          uuid.UUID                   `json:"id"`
	OrderNumber string                      `json:"order_number"`
	SupplierID  uuid.UUID                   `json:"supplier_id"`
	WarehouseID uuid.UUID                   `json:"warehouse_id"`
	Status      string                      `json:"status"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
	CreatedBy   string                      `json:"created_by"`
	Items       []PurchaseOrderItemResponse `json:"items"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// PurchaseOrderItemResponse represents an order line in API responses
type PurchaseOrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Amount    decimal.Decimal `json:"amount"`
	Unit      string          `json:"unit"`
}

// ToPurchaseOrderResponse converts a PurchaseOrder to its response form
func ToPurchaseOrderResponse(o *replenishment.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, PurchaseOrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			Amount:    item.Amount,
			Unit:      item.Unit,
		})
	}
	return PurchaseOrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID,
		WarehouseID: o.WarehouseID,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		CreatedBy:   o.CreatedBy,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
}
