package report

import (
	"context"
	"time"
)

// LowStockItem fila del reporte de reposición.
type LowStockItem struct {
	SKU          string
	Name         string
	CurrentStock int
	ReorderPoint int
	MinThreshold int
	Status       string
	SuggestedQty int
}

// PDFGenerator genera el PDF del reporte de bajo stock (puerto de salida).
type PDFGenerator interface {
	GenerateLowStockReport(ctx context.Context, items []LowStockItem, generatedAt time.Time) ([]byte, error)
}
