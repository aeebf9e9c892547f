package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del ledger de stock.
const (
	LedgerTypeIN         = "IN"         // entrada
	LedgerTypeOUT        = "OUT"        // salida
	LedgerTypeADJUSTMENT = "ADJUSTMENT" // ajuste a valor absoluto
	LedgerTypeRETURN     = "RETURN"     // devolución (suma como IN)
	LedgerTypeDAMAGE     = "DAMAGE"     // merma (resta como OUT)
)

// ValidLedgerType verifica que el tipo sea uno de los cinco conocidos.
func ValidLedgerType(t string) bool {
	switch t {
	case LedgerTypeIN, LedgerTypeOUT, LedgerTypeADJUSTMENT, LedgerTypeRETURN, LedgerTypeDAMAGE:
		return true
	}
	return false
}

// LedgerRecord entrada inmutable del ledger: un cambio de stock y su causa.
// PreviousStock/NewStock son el snapshot de la trayectoria del producto al
// momento de la inserción; el registro nunca se edita ni se borra.
type LedgerRecord struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      int // siempre positivo; en ADJUSTMENT es |NewStock - PreviousStock|
	PreviousStock int
	NewStock      int
	Reason        string
	Reference     string
	PerformedBy   string
	UnitCost      decimal.Decimal // costo unitario al momento del movimiento
	TotalCost     decimal.Decimal
	CreatedAt     time.Time
}

// SignedDelta delta firmado que el registro aporta al stock del producto.
// La suma de los deltas de todos los registros de un producto es su stock actual.
func (r *LedgerRecord) SignedDelta() int {
	return r.NewStock - r.PreviousStock
}

// IsOutbound indica si el registro representa una salida de stock.
func (r *LedgerRecord) IsOutbound() bool {
	return r.NewStock < r.PreviousStock
}
