// Package report genera el reporte PDF de reposición: los productos activos
// en o bajo su punto de reorden, con la cantidad sugerida de pedido.
package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// idealStockFactor stock ideal = punto de reorden * factor, para la cantidad
// sugerida cuando el producto aún no tiene proyección de demanda.
const idealStockFactor = 1.5

// LowStockReportUseCase arma la lista de reposición y delega el render al
// generador PDF.
type LowStockReportUseCase struct {
	productRepo repository.ProductRepository
	generator   PDFGenerator
}

// NewLowStockReportUseCase construye el caso de uso.
func NewLowStockReportUseCase(productRepo repository.ProductRepository, generator PDFGenerator) *LowStockReportUseCase {
	return &LowStockReportUseCase{productRepo: productRepo, generator: generator}
}

// Generate devuelve los bytes del PDF con los productos por reponer,
// ordenados por déficit frente al punto de reorden (más urgente primero).
func (uc *LowStockReportUseCase) Generate(ctx context.Context) ([]byte, error) {
	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]LowStockItem, 0)
	for _, p := range products {
		if !p.NeedsReorder() {
			continue
		}
		items = append(items, LowStockItem{
			SKU:          p.SKU,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			ReorderPoint: p.Thresholds.ReorderPoint,
			MinThreshold: p.Thresholds.Min,
			Status:       p.Status(),
			SuggestedQty: suggestedQty(p),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ReorderPoint-items[i].CurrentStock > items[j].ReorderPoint-items[j].CurrentStock
	})

	return uc.generator.GenerateLowStockReport(ctx, items, time.Now())
}

// suggestedQty usa la proyección de demanda si existe; si no, la diferencia
// hasta el stock ideal.
func suggestedQty(p *entity.Product) int {
	if p.Predictions.SuggestedReorderQty > 0 {
		return p.Predictions.SuggestedReorderQty
	}
	ideal := int(math.Ceil(float64(p.Thresholds.ReorderPoint) * idealStockFactor))
	if ideal <= p.CurrentStock {
		return 0
	}
	return ideal - p.CurrentStock
}
