package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/mrp/backend/internal/application/inventory"
	"github.com/mrp/backend/internal/infrastructure/cache"
	"github.com/mrp/backend/internal/interfaces/http/dto"
)

// StockOperations is the slice of the stock service the handler needs
type StockOperations interface {
	CreateLot(ctx context.Context, req stockapp.CreateLotRequest, actor string) (*stockapp.LotResponse, error)
	Consume(ctx context.Context, req stockapp.ConsumeStockRequest, actor string) (*stockapp.ConsumeStockResponse, error)
	QuarantineLot(ctx context.Context, lotID uuid.UUID, reason, actor string) (*stockapp.LotResponse, error)
	ReleaseLot(ctx context.Context, lotID uuid.UUID, reason, actor string) (*stockapp.LotResponse, error)
	Adjust(ctx context.Context, req stockapp.AdjustStockRequest, actor string) (*stockapp.AdjustStockResponse, error)
	Recompute(ctx context.Context, req stockapp.RecomputeRequest, actor string) (*stockapp.RecomputeResponse, error)
	SetThresholds(ctx context.Context, req stockapp.SetThresholdsRequest) (*stockapp.StockLevelResponse, error)
	GetStockLevel(ctx context.Context, warehouseID, productID uuid.UUID) (*stockapp.StockLevelResponse, error)
	ListLots(ctx context.Context, warehouseID, productID uuid.UUID) ([]stockapp.LotResponse, error)
	ListMovements(ctx context.Context, filter stockapp.MovementListFilter) ([]stockapp.MovementResponse, int64, error)
}

// StockHandler handles stock-related API endpoints
type StockHandler struct {
	BaseHandler
	stockService StockOperations
	levelCache   *cache.StockLevelCache
}

// NewStockHandler creates a new StockHandler. The cache may be nil.
func NewStockHandler(stockService StockOperations, levelCache *cache.StockLevelCache) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		levelCache:   levelCache,
	}
}

// CreateLot handles POST /api/v1/stock/lots
func (h *StockHandler) CreateLot(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req stockapp.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	lot, err := h.stockService.CreateLot(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), req.WarehouseID, req.ProductID)
	h.Created(c, lot)
}

// Consume handles POST /api/v1/stock/consume
func (h *StockHandler) Consume(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req stockapp.ConsumeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.Consume(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), req.WarehouseID, req.ProductID)
	h.Success(c, result)
}

// QuarantineLot handles POST /api/v1/stock/lots/:lot_id/quarantine
func (h *StockHandler) QuarantineLot(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	lotID, ok := h.bindLotID(c)
	if !ok {
		return
	}

	var req stockapp.LotHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BindError(c, err)
		return
	}

	lot, err := h.stockService.QuarantineLot(c.Request.Context(), lotID, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), lot.WarehouseID, lot.ProductID)
	h.Success(c, lot)
}

// ReleaseLot handles POST /api/v1/stock/lots/:lot_id/release
func (h *StockHandler) ReleaseLot(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	lotID, ok := h.bindLotID(c)
	if !ok {
		return
	}

	var req stockapp.LotHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BindError(c, err)
		return
	}

	lot, err := h.stockService.ReleaseLot(c.Request.Context(), lotID, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), lot.WarehouseID, lot.ProductID)
	h.Success(c, lot)
}

// Adjust handles POST /api/v1/stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req stockapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.Adjust(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), req.WarehouseID, req.ProductID)
	h.Success(c, result)
}

// Recompute handles POST /api/v1/stock/recompute
func (h *StockHandler) Recompute(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req stockapp.RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.Recompute(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), req.WarehouseID, req.ProductID)
	h.Success(c, result)
}

// SetThresholds handles PUT /api/v1/stock/thresholds
func (h *StockHandler) SetThresholds(c *gin.Context) {
	var req stockapp.SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	level, err := h.stockService.SetThresholds(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Invalidate(c.Request.Context(), req.WarehouseID, req.ProductID)
	h.Success(c, level)
}

// GetStockLevel handles GET /api/v1/warehouses/:warehouse_id/products/:product_id/stock
func (h *StockHandler) GetStockLevel(c *gin.Context) {
	warehouseID, productID, ok := h.bindPair(c)
	if !ok {
		return
	}

	if cached := h.levelCache.Get(c.Request.Context(), warehouseID, productID); cached != nil {
		h.Success(c, cached)
		return
	}

	level, err := h.stockService.GetStockLevel(c.Request.Context(), warehouseID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.levelCache.Set(c.Request.Context(), level)
	h.Success(c, level)
}

// ListLots handles GET /api/v1/warehouses/:warehouse_id/products/:product_id/lots
func (h *StockHandler) ListLots(c *gin.Context) {
	warehouseID, productID, ok := h.bindPair(c)
	if !ok {
		return
	}

	lots, err := h.stockService.ListLots(c.Request.Context(), warehouseID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lots)
}

// ListMovements handles GET /api/v1/stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter stockapp.MovementListFilter
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

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// bindLotID binds the lot ID path parameter
func (h *StockHandler) bindLotID(c *gin.Context) (uuid.UUID, bool) {
	lotID, err := uuid.Parse(c.Param("lot_id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return uuid.Nil, false
	}
	return lotID, true
}

// bindPair binds the warehouse and product path parameters
func (h *StockHandler) bindPair(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	var params dto.PairRequest
	if err := c.ShouldBindUri(&params); err != nil {
		h.BindError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	warehouseID, err := uuid.Parse(params.WarehouseID)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return uuid.Nil, uuid.Nil, false
	}
	productID, err := uuid.Parse(params.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return uuid.Nil, uuid.Nil, false
	}
	return warehouseID, productID, true
}
