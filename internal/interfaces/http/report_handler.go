package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/report"
)

// ReportHandler maneja la descarga de reportes PDF.
type ReportHandler struct {
	uc *report.LowStockReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.LowStockReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStockPDF godoc
// @Summary      Reporte PDF de reposición
// @Description  Productos activos en o bajo su punto de reorden, ordenados por
//
//	déficit, con la cantidad sugerida de pedido.
//
// @Tags         reports
// @Produce      application/pdf
// @Success      200  {file}    file
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock.pdf [get]
func (h *ReportHandler) LowStockPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.Generate(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="low-stock-report.pdf"`)
	return c.Send(pdfBytes)
}
