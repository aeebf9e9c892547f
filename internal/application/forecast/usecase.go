// Package forecast contiene el estimador naive de demanda: promedio móvil de
// las salidas mensuales más una tendencia lineal simple. No es un modelo
// estadístico; es la heurística del sistema, preservada tal cual.
package forecast

import (
	"context"
	"math"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

const (
	// defaultLookbackMonths ventana histórica por defecto.
	defaultLookbackMonths = 12
	// forecastMonths meses proyectados hacia adelante.
	forecastMonths = 3
	// fixedConfidence confianza fija de la proyección. Simplificación conocida:
	// no es un valor derivado estadísticamente.
	fixedConfidence = 75
)

// EstimatorUseCase calcula la proyección de demanda de un producto desde las
// salidas (OUT) del ledger agrupadas por mes calendario.
//
// Acoplamiento intencional: aunque es un camino de lectura, persiste la
// proyección calculada sobre el producto (cache write-back), igual que el
// sistema original. El caller obtiene el DTO; el producto queda actualizado.
type EstimatorUseCase struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
}

// NewEstimatorUseCase construye el estimador.
func NewEstimatorUseCase(productRepo repository.ProductRepository, ledgerRepo repository.LedgerRepository) *EstimatorUseCase {
	return &EstimatorUseCase{productRepo: productRepo, ledgerRepo: ledgerRepo}
}

// EstimateDemand agrupa las salidas de [ahora - lookbackMonths, ahora] en
// buckets de mes calendario (meses sin movimientos cuentan como 0), calcula
// promedio y tendencia, proyecta 3 meses y persiste la predicción.
//
// Reglas exactas (no "mejorar" la heurística):
//   - avg    = media de todos los buckets, ceros incluidos
//   - trend  = (último - primero) / n, solo con n > 3; si no, 0
//   - mes i  = max(0, round(avg + trend·(n+i))), i = 1..3
func (uc *EstimatorUseCase) EstimateDemand(ctx context.Context, productID string, lookbackMonths int) (*dto.DemandForecastDTO, error) {
	if lookbackMonths <= 0 {
		lookbackMonths = defaultLookbackMonths
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	// Anclar al día 1 del mes evita la normalización de fechas al restar
	// meses (31 de marzo - 1 mes no es un mes calendario atrás).
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	oldest := monthStart.AddDate(0, -(lookbackMonths - 1), 0)

	records, err := uc.ledgerRepo.ListByProduct(ctx, productID, entity.LedgerTypeOUT, &oldest, &now, 0, 0)
	if err != nil {
		return nil, err
	}

	// Buckets de mes calendario, del más antiguo al más reciente.
	totals := make(map[string]int, lookbackMonths)
	for _, r := range records {
		totals[r.CreatedAt.Format("2006-01")] += r.Quantity
	}

	buckets := make([]int, lookbackMonths)
	historical := make([]dto.MonthlyDemandDTO, 0, lookbackMonths+forecastMonths)
	for i := 0; i < lookbackMonths; i++ {
		month := oldest.AddDate(0, i, 0)
		qty := totals[month.Format("2006-01")]
		buckets[i] = qty
		actual := qty
		historical = append(historical, dto.MonthlyDemandDTO{
			Month:  month.Month().String()[:3],
			Year:   month.Year(),
			Actual: &actual,
		})
	}

	n := len(buckets)
	var sum int
	for _, v := range buckets {
		sum += v
	}
	avg := float64(sum) / float64(n)

	var trend float64
	if n > 3 {
		trend = float64(buckets[n-1]-buckets[0]) / float64(n)
	}

	for i := 1; i <= forecastMonths; i++ {
		month := monthStart.AddDate(0, i, 0)
		predicted := int(math.Max(0, math.Round(avg+trend*float64(n+i))))
		historical = append(historical, dto.MonthlyDemandDTO{
			Month:     month.Month().String()[:3],
			Year:      month.Year(),
			Predicted: &predicted,
		})
	}

	predictions := entity.Predictions{
		NextPeriodDemand: int(math.Round(avg + trend)),
		Confidence:       fixedConfidence,
	}
	if suggested := predictions.NextPeriodDemand*2 - product.CurrentStock; suggested > 0 {
		predictions.SuggestedReorderQty = suggested
	}
	if product.CurrentStock > 0 && avg > 0 {
		daysUntilStockout := int(math.Floor(float64(product.CurrentStock) / (avg / 30)))
		stockout := now.Add(time.Duration(daysUntilStockout) * 24 * time.Hour)
		predictions.PredictedStockout = &stockout
	}

	// Write-back de la proyección sobre el producto.
	if err := uc.productRepo.UpdatePredictions(ctx, productID, predictions); err != nil {
		return nil, err
	}

	return &dto.DemandForecastDTO{
		Historical: historical,
		Predictions: dto.PredictionsDTO{
			NextPeriodDemand:    predictions.NextPeriodDemand,
			Confidence:          predictions.Confidence,
			SuggestedReorderQty: predictions.SuggestedReorderQty,
			PredictedStockout:   predictions.PredictedStockout,
		},
		CurrentStock:  product.CurrentStock,
		AverageDemand: avg,
	}, nil
}
