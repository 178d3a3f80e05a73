package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/kardex-core/internal/application/inventory"
)

var _ inventory.CostCache = (*CostCache)(nil)

// CostCache caché de último costo por producto sobre Redis. Best effort: un
// error de Redis se trata como cache miss, nunca interrumpe la operación.
type CostCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCostCache construye el caché. ttl <= 0 usa 10 minutos.
func NewCostCache(rdb *redis.Client, ttl time.Duration) *CostCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CostCache{rdb: rdb, ttl: ttl}
}

func key(productID string) string {
	return "kardex:lastcost:" + productID
}

// GetLastCost devuelve el costo cacheado y true, o false en miss o error.
func (c *CostCache) GetLastCost(ctx context.Context, productID string) (decimal.Decimal, bool) {
	val, err := c.rdb.Get(ctx, key(productID)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	cost, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return cost, true
}

// SetLastCost guarda el costo con TTL.
func (c *CostCache) SetLastCost(ctx context.Context, productID string, cost decimal.Decimal) {
	_ = c.rdb.Set(ctx, key(productID), cost.String(), c.ttl).Err()
}

// Invalidate elimina la entrada del producto (tras una escritura del ledger).
func (c *CostCache) Invalidate(ctx context.Context, productID string) {
	_ = c.rdb.Del(ctx, key(productID)).Err()
}
