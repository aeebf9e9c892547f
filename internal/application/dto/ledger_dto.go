package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockChangeRequest cuerpo del endpoint de cambio de stock.
// Para ADJUSTMENT, Quantity es el valor absoluto objetivo del stock.
type StockChangeRequest struct {
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
	Reference   string `json:"reference"`
	PerformedBy string `json:"performed_by"`
}

// LedgerRecordDTO registro del ledger para respuestas HTTP.
type LedgerRecordDTO struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      int             `json:"quantity"`
	PreviousStock int             `json:"previous_stock"`
	NewStock      int             `json:"new_stock"`
	Reason        string          `json:"reason"`
	Reference     string          `json:"reference,omitempty"`
	PerformedBy   string          `json:"performed_by"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewLedgerRecordDTO construye el DTO desde la entidad.
func NewLedgerRecordDTO(r *entity.LedgerRecord) LedgerRecordDTO {
	return LedgerRecordDTO{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Type:          r.Type,
		Quantity:      r.Quantity,
		PreviousStock: r.PreviousStock,
		NewStock:      r.NewStock,
		Reason:        r.Reason,
		Reference:     r.Reference,
		PerformedBy:   r.PerformedBy,
		UnitCost:      r.UnitCost,
		TotalCost:     r.TotalCost,
		CreatedAt:     r.CreatedAt,
	}
}

// StockChangeResponse respuesta del endpoint de cambio de stock:
// producto actualizado + registro generado.
type StockChangeResponse struct {
	Product     ProductDTO      `json:"product"`
	Transaction LedgerRecordDTO `json:"transaction"`
}
