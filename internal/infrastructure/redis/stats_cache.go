package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

const dashboardStatsKey = "stock:dashboard:stats"

var _ analytics.StatsCache = (*StatsCache)(nil)

// StatsCache cache-aside en Redis para el resumen del dashboard.
// La expiración es solo por TTL: el resumen tolera estar levemente
// desactualizado y no se invalida en cada mutación de stock.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache construye el adaptador de cache.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get obtiene el resumen cacheado. Un miss devuelve (nil, nil).
func (c *StatsCache) Get(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	val, err := c.client.Get(ctx, dashboardStatsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error al leer cache de dashboard: %w", err)
	}

	var stats dto.DashboardStatsDTO
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, fmt.Errorf("error al deserializar cache de dashboard: %w", err)
	}
	return &stats, nil
}

// Set escribe el resumen con TTL.
func (c *StatsCache) Set(ctx context.Context, stats *dto.DashboardStatsDTO) error {
	val, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("error al serializar resumen de dashboard: %w", err)
	}
	if err := c.client.Set(ctx, dashboardStatsKey, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("error al escribir cache de dashboard: %w", err)
	}
	return nil
}
