package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stockapp "github.com/mrp/backend/internal/application/inventory"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/interfaces/http/middleware"
)

type stubStockService struct {
	createLotFn func(ctx context.Context, req stockapp.CreateLotRequest, actor string) (*stockapp.LotResponse, error)
	consumeFn   func(ctx context.Context, req stockapp.ConsumeStockRequest, actor string) (*stockapp.ConsumeStockResponse, error)
	getLevelFn  func(ctx context.Context, warehouseID, productID uuid.UUID) (*stockapp.StockLevelResponse, error)
}

func (s *stubStockService) CreateLot(ctx context.Context, req stockapp.CreateLotRequest, actor string) (*stockapp.LotResponse, error) {
	return s.createLotFn(ctx, req, actor)
}

func (s *stubStockService) Consume(ctx context.Context, req stockapp.ConsumeStockRequest, actor string) (*stockapp.ConsumeStockResponse, error) {
	return s.consumeFn(ctx, req, actor)
}

func (s *stubStockService) QuarantineLot(context.Context, uuid.UUID, string, string) (*stockapp.LotResponse, error) {
	return &stockapp.LotResponse{Status: "quarantine"}, nil
}

func (s *stubStockService) ReleaseLot(context.Context, uuid.UUID, string, string) (*stockapp.LotResponse, error) {
	return &stockapp.LotResponse{Status: "available"}, nil
}

func (s *stubStockService) Adjust(context.Context, stockapp.AdjustStockRequest, string) (*stockapp.AdjustStockResponse, error) {
	return &stockapp.AdjustStockResponse{}, nil
}

func (s *stubStockService) Recompute(context.Context, stockapp.RecomputeRequest, string) (*stockapp.RecomputeResponse, error) {
	return &stockapp.RecomputeResponse{}, nil
}

func (s *stubStockService) SetThresholds(context.Context, stockapp.SetThresholdsRequest) (*stockapp.StockLevelResponse, error) {
	return &stockapp.StockLevelResponse{}, nil
}

func (s *stubStockService) GetStockLevel(ctx context.Context, warehouseID, productID uuid.UUID) (*stockapp.StockLevelResponse, error) {
	return s.getLevelFn(ctx, warehouseID, productID)
}

func (s *stubStockService) ListLots(context.Context, uuid.UUID, uuid.UUID) ([]stockapp.LotResponse, error) {
	return nil, nil
}

func (s *stubStockService) ListMovements(context.Context, stockapp.MovementListFilter) ([]stockapp.MovementResponse, int64, error) {
	return []stockapp.MovementResponse{}, 0, nil
}

func newStockTestRouter(service StockOperations) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor())

	h := NewStockHandler(service, nil)
	engine.POST("/stock/lots", h.CreateLot)
	engine.POST("/stock/lots/:lot_id/quarantine", h.QuarantineLot)
	engine.POST("/stock/lots/:lot_id/release", h.ReleaseLot)
	engine.POST("/stock/consume", h.Consume)
	engine.GET("/warehouses/:warehouse_id/products/:product_id/stock", h.GetStockLevel)
	return engine
}

func TestStockHandler_CreateLot(t *testing.T) {
	service := &stubStockService{
		createLotFn: func(_ context.Context, req stockapp.CreateLotRequest, actor string) (*stockapp.LotResponse, error) {
			return &stockapp.LotResponse{
				ID:                uuid.New(),
				LotNumber:         req.LotNumber,
				RemainingQuantity: req.Quantity,
			}, nil
		},
	}
	engine := newStockTestRouter(service)

	body := map[string]any{
		"lot_number":   "LOT-001",
		"product_id":   uuid.New().String(),
		"warehouse_id": uuid.New().String(),
		"quantity":     "10",
		"unit":         "KG",
		"unit_cost":    "2.5",
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	t.Run("created with actor header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/stock/lots", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ActorHeader, "warehouse-clerk")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "LOT-001")
	})

	t.Run("rejected without actor header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/stock/lots", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), middleware.ActorHeader)
	})

	t.Run("rejected with malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/stock/lots", bytes.NewReader([]byte(`{"lot_number":""}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ActorHeader, "warehouse-clerk")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestStockHandler_QuarantineLot(t *testing.T) {
	engine := newStockTestRouter(&stubStockService{})

	t.Run("quarantine with actor header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost,
			"/stock/lots/"+uuid.New().String()+"/quarantine",
			bytes.NewReader([]byte(`{"reason":"damaged pallet"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ActorHeader, "qa")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "quarantine")
	})

	t.Run("release without body is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost,
			"/stock/lots/"+uuid.New().String()+"/release", nil)
		req.Header.Set(middleware.ActorHeader, "qa")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "available")
	})

	t.Run("malformed lot id maps to 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost,
			"/stock/lots/not-a-uuid/quarantine", nil)
		req.Header.Set(middleware.ActorHeader, "qa")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejected without actor header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost,
			"/stock/lots/"+uuid.New().String()+"/quarantine", nil)
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestStockHandler_ConsumeErrorMapping(t *testing.T) {
	service := &stubStockService{
		consumeFn: func(context.Context, stockapp.ConsumeStockRequest, string) (*stockapp.ConsumeStockResponse, error) {
			return nil, shared.ErrInsufficientStock
		},
	}
	engine := newStockTestRouter(service)

	body, err := json.Marshal(map[string]any{
		"product_id":   uuid.New().String(),
		"warehouse_id": uuid.New().String(),
		"quantity":     "100",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/stock/consume", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "production-line")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ERR_INSUFFICIENT_STOCK")
}

func TestStockHandler_GetStockLevel(t *testing.T) {
	warehouseID := uuid.New()
	productID := uuid.New()
	service := &stubStockService{
		getLevelFn: func(_ context.Context, w, p uuid.UUID) (*stockapp.StockLevelResponse, error) {
			if w != warehouseID || p != productID {
				return nil, shared.ErrNotFound
			}
			return &stockapp.StockLevelResponse{
				WarehouseID: w,
				ProductID:   p,
				Quantity:    decimal.NewFromInt(42),
			}, nil
		},
	}
	engine := newStockTestRouter(service)

	t.Run("returns the level", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/warehouses/"+warehouseID.String()+"/products/"+productID.String()+"/stock", nil)
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "42")
	})

	t.Run("unknown pair maps to 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/warehouses/"+uuid.New().String()+"/products/"+productID.String()+"/stock", nil)
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("malformed uuid maps to 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/warehouses/not-a-uuid/products/"+productID.String()+"/stock", nil)
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
