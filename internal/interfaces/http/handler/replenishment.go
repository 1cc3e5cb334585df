package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	replapp "github.com/mrp/backend/internal/application/replenishment"
	"github.com/mrp/backend/internal/interfaces/http/dto"
)

// ReplenishmentOperations is the slice of the replenishment service the
// handler needs
type ReplenishmentOperations interface {
	GenerateSuggestions(ctx context.Context, req replapp.GenerateRequest) (*replapp.GenerateResponse, error)
	Approve(ctx context.Context, suggestionID uuid.UUID, reviewer string) (*replapp.ApproveResponse, error)
	Reject(ctx context.Context, suggestionID uuid.UUID, reviewer, reason string) (*replapp.SuggestionResponse, error)
	List(ctx context.Context, filter replapp.SuggestionListFilter) ([]replapp.SuggestionResponse, int64, error)
	Get(ctx context.Context, suggestionID uuid.UUID) (*replapp.SuggestionResponse, error)
}

// ReplenishmentHandler handles replenishment API endpoints
type ReplenishmentHandler struct {
	BaseHandler
	replenishmentService ReplenishmentOperations
}

// NewReplenishmentHandler creates a new ReplenishmentHandler
func NewReplenishmentHandler(replenishmentService ReplenishmentOperations) *ReplenishmentHandler {
	return &ReplenishmentHandler{replenishmentService: replenishmentService}
}

// Scan handles POST /api/v1/replenishment/scan
func (h *ReplenishmentHandler) Scan(c *gin.Context) {
	var req replapp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BindError(c, err)
		return
	}

	result, err := h.replenishmentService.GenerateSuggestions(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /api/v1/replenishment/suggestions
func (h *ReplenishmentHandler) List(c *gin.Context) {
	var filter replapp.SuggestionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	suggestions, total, err := h.replenishmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, suggestions, total, filter.Page, filter.PageSize)
}

// Get handles GET /api/v1/replenishment/suggestions/:id
func (h *ReplenishmentHandler) Get(c *gin.Context) {
	suggestionID, ok := h.bindID(c)
	if !ok {
		return
	}

	suggestion, err := h.replenishmentService.Get(c.Request.Context(), suggestionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, suggestion)
}

// Approve handles POST /api/v1/replenishment/suggestions/:id/approve
func (h *ReplenishmentHandler) Approve(c *gin.Context) {
	reviewer, ok := h.requireActor(c)
	if !ok {
		return
	}
	suggestionID, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.replenishmentService.Approve(c.Request.Context(), suggestionID, reviewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Reject handles POST /api/v1/replenishment/suggestions/:id/reject
func (h *ReplenishmentHandler) Reject(c *gin.Context) {
	reviewer, ok := h.requireActor(c)
	if !ok {
		return
	}
	suggestionID, ok := h.bindID(c)
	if !ok {
		return
	}

	var req replapp.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BindError(c, err)
		return
	}

	suggestion, err := h.replenishmentService.Reject(c.Request.Context(), suggestionID, reviewer, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, suggestion)
}

// bindID binds the suggestion ID path parameter
func (h *ReplenishmentHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var params dto.IDRequest
	if err := c.ShouldBindUri(&params); err != nil {
		h.BindError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(params.ID)
	if err != nil {
		h.BadRequest(c, "Invalid suggestion ID")
		return uuid.Nil, false
	}
	return id, true
}
