// Package pdf implementa la generación del reporte de reposición de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte │ Fecha de generación            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Stock | Punto reorden | Mín |       │
//	│         Estado | Cant. sugerida                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de productos por reponer                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-ledger-api/internal/application/report"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa report.PDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateLowStockReport genera el PDF del reporte y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateLowStockReport(
	_ context.Context,
	items []report.LowStockItem,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Reposición de Stock", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(items)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha de generación (der).
func headerRow(generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("REPORTE DE REPOSICIÓN DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Productos por debajo de su punto de reorden", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado:", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorGray, Top: 2,
			}),
			text.New(generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla del reporte.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Stock", 1, align.Right),
		h("Reorden", 1, align.Right),
		h("Mín.", 1, align.Right),
		h("Estado", 2, align.Center),
		h("Cant. sugerida", 2, align.Right),
	)
}

// tableItemRows: una fila por producto, estado crítico resaltado.
func tableItemRows(items []report.LowStockItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, item := range items {
		statusColor := colorGray
		if item.Status == entity.StatusCritical || item.Status == entity.StatusOutOfStock {
			statusColor = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(item.SKU, props.Text{
				Size: 8, Align: align.Left, Top: 1, Left: 1,
			})),
			col.New(3).Add(text.New(item.Name, props.Text{
				Size: 8, Align: align.Left, Top: 1, Left: 1,
			})),
			col.New(1).Add(text.New(strconv.Itoa(item.CurrentStock), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(1).Add(text.New(strconv.Itoa(item.ReorderPoint), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(1).Add(text.New(strconv.Itoa(item.MinThreshold), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(2).Add(text.New(item.Status, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center,
				Color: statusColor, Top: 1,
			})),
			col.New(2).Add(text.New(strconv.Itoa(item.SuggestedQty), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return result
}

// footerRow: total de productos incluidos en el reporte.
func footerRow(total int) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de productos por reponer: %d", total), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
		}),
	))
}
