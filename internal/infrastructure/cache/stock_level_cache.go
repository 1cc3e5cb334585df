package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appinventory "github.com/mrp/backend/internal/application/inventory"
	"github.com/mrp/backend/internal/infrastructure/config"
)

// StockLevelCache is a short-TTL read cache for stock level lookups. It only
// serves the read path; every mutation goes to the database and invalidates
// the cached pair. A nil cache is valid and disables caching, so callers
// never need to branch on whether Redis is configured.
type StockLevelCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient creates a Redis client from configuration and verifies the
// connection. Returns nil without error when Redis is disabled.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)
	return client, nil
}

// NewStockLevelCache creates a stock level cache. A nil client yields a nil
// cache, which all methods tolerate.
func NewStockLevelCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StockLevelCache {
	if client == nil {
		return nil
	}
	return &StockLevelCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(warehouseID, productID uuid.UUID) string {
	return fmt.Sprintf("stock_level:%s:%s", warehouseID, productID)
}

// Get returns the cached stock level for a pair, or nil on a miss
func (c *StockLevelCache) Get(ctx context.Context, warehouseID, productID uuid.UUID) *appinventory.StockLevelResponse {
	if c == nil {
		return nil
	}

	data, err := c.client.Get(ctx, cacheKey(warehouseID, productID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stock level cache read failed", zap.Error(err))
		}
		return nil
	}

	var response appinventory.StockLevelResponse
	if err := json.Unmarshal(data, &response); err != nil {
		c.logger.Warn("stock level cache entry corrupt", zap.Error(err))
		return nil
	}
	return &response
}

// Set stores a stock level response under the pair's key
func (c *StockLevelCache) Set(ctx context.Context, response *appinventory.StockLevelResponse) {
	if c == nil || response == nil {
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(response.WarehouseID, response.ProductID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("stock level cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry for a pair after a mutation
func (c *StockLevelCache) Invalidate(ctx context.Context, warehouseID, productID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(warehouseID, productID)).Err(); err != nil {
		c.logger.Warn("stock level cache invalidation failed", zap.Error(err))
	}
}
