package analytics

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// StatsCache cache-aside para el resumen del dashboard. Un miss devuelve
// (nil, nil); la expiración es por TTL, el resumen se tolera levemente
// desactualizado.
type StatsCache interface {
	Get(ctx context.Context) (*dto.DashboardStatsDTO, error)
	Set(ctx context.Context, stats *dto.DashboardStatsDTO) error
}
