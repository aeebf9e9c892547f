package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// initialStockReason causa del registro sintético al crear con stock inicial.
const initialStockReason = "Initial stock"

// manualAdjustmentReason causa por defecto cuando un PUT cambia el stock.
const manualAdjustmentReason = "Manual adjustment"

// ProductUseCase CRUD de productos. Toda operación que afecte el stock pasa
// por el mutador (nunca se escribe CurrentStock directamente): un PUT con
// current_stock distinto se convierte en un ADJUSTMENT con su registro en el
// ledger.
type ProductUseCase struct {
	txRunner     ledger.TxRunner
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ledgerRepo   repository.LedgerRepository
	mutator      *ledger.ApplyStockChangeUseCase
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner ledger.TxRunner,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	ledgerRepo repository.LedgerRepository,
	mutator *ledger.ApplyStockChangeUseCase,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ledgerRepo:   ledgerRepo,
		mutator:      mutator,
	}
}

// Create crea el producto y, si trae stock inicial, agrega el registro
// sintético "Initial stock" en la misma transacción. El stock inicial no
// cuenta como compra (TotalOrdered queda en cero).
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductDTO, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if name == "" || sku == "" || in.CategoryID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock < 0 || in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	category, err := uc.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrInvalidInput
	}

	thresholds := entity.Thresholds{
		Min:           valueOr(in.MinThreshold, entity.DefaultThresholdMin),
		Max:           valueOr(in.MaxThreshold, entity.DefaultThresholdMax),
		ReorderPoint:  valueOr(in.ReorderPoint, entity.DefaultReorderPoint),
		CriticalLevel: valueOr(in.CriticalLevel, entity.DefaultCriticalLevel),
	}
	if !thresholds.Valid() {
		return nil, domain.ErrInvalidInput
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          sku,
		CategoryID:   in.CategoryID,
		Name:         name,
		Description:  in.Description,
		CurrentStock: in.InitialStock,
		Thresholds:   thresholds,
		Price: entity.Price{
			Cost:     in.CostPrice,
			Selling:  in.SellingPrice,
			Currency: currency,
		},
		Supplier: entity.Supplier{
			Name:         in.SupplierName,
			Email:        in.SupplierEmail,
			Phone:        in.SupplierPhone,
			LeadTimeDays: valueOr(in.LeadTimeDays, entity.DefaultSupplierLeadTime),
		},
		Velocity:  entity.VelocityMedium,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.CurrentStock == 0 {
			return nil
		}
		performedBy := in.PerformedBy
		if performedBy == "" {
			performedBy = "System"
		}
		record := &entity.LedgerRecord{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			Type:          entity.LedgerTypeIN,
			Quantity:      product.CurrentStock,
			PreviousStock: 0,
			NewStock:      product.CurrentStock,
			Reason:        initialStockReason,
			PerformedBy:   performedBy,
			UnitCost:      product.Price.Cost,
			TotalCost:     product.Price.Cost.Mul(decimal.NewFromInt(int64(product.CurrentStock))),
			CreatedAt:     now,
		}
		return ledgerRepo.Append(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	result := dto.NewProductDTO(product)
	return &result, nil
}

// Get obtiene un producto con sus campos derivados.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductDTO, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	result := dto.NewProductDTO(product)
	return &result, nil
}

// List lista productos paginados.
func (uc *ProductUseCase) List(ctx context.Context, page, limit int) ([]dto.ProductDTO, *dto.PageInfo, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	products, err := uc.productRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.productRepo.Count(ctx)
	if err != nil {
		return nil, nil, err
	}

	result := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		result = append(result, dto.NewProductDTO(p))
	}
	return result, &dto.PageInfo{
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		TotalItems:  total,
	}, nil
}

// Update actualiza campos del producto. Un cambio de current_stock se aplica
// como ADJUSTMENT vía el mutador, que genera el registro correspondiente.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductDTO, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.CurrentStock != nil && *in.CurrentStock != product.CurrentStock {
		reason := in.StockChangeReason
		if reason == "" {
			reason = manualAdjustmentReason
		}
		if _, err := uc.mutator.Execute(ctx, ledger.ApplyStockChangeInput{
			ProductID:   id,
			Type:        entity.LedgerTypeADJUSTMENT,
			Quantity:    *in.CurrentStock,
			Reason:      reason,
			PerformedBy: in.PerformedBy,
		}); err != nil {
			return nil, err
		}
		// Releer: el mutador ya persistió stock y métricas.
		product, err = uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		category, err := uc.categoryRepo.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrInvalidInput
		}
		product.CategoryID = *in.CategoryID
	}
	thresholds := product.Thresholds
	if in.MinThreshold != nil {
		thresholds.Min = *in.MinThreshold
	}
	if in.MaxThreshold != nil {
		thresholds.Max = *in.MaxThreshold
	}
	if in.ReorderPoint != nil {
		thresholds.ReorderPoint = *in.ReorderPoint
	}
	if in.CriticalLevel != nil {
		thresholds.CriticalLevel = *in.CriticalLevel
	}
	if !thresholds.Valid() {
		return nil, domain.ErrInvalidInput
	}
	product.Thresholds = thresholds
	if in.CostPrice != nil {
		if in.CostPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price.Cost = *in.CostPrice
	}
	if in.SellingPrice != nil {
		if in.SellingPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price.Selling = *in.SellingPrice
	}
	if in.SupplierName != nil {
		product.Supplier.Name = *in.SupplierName
	}
	product.UpdatedAt = time.Now()

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	result := dto.NewProductDTO(product)
	return &result, nil
}

// Deactivate baja lógica del producto. Nunca se borra físicamente: el
// histórico del ledger debe seguir siendo consistente.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.productRepo.Deactivate(ctx, id)
}

// ListTransactions lista el ledger de un producto paginado, más recientes primero.
func (uc *ProductUseCase) ListTransactions(ctx context.Context, productID string, page, limit int) ([]dto.LedgerRecordDTO, *dto.PageInfo, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}

	records, err := uc.ledgerRepo.ListByProduct(ctx, productID, "", nil, nil, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := uc.ledgerRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	result := make([]dto.LedgerRecordDTO, 0, len(records))
	for _, r := range records {
		result = append(result, dto.NewLedgerRecordDTO(r))
	}
	return result, &dto.PageInfo{
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		TotalItems:  total,
	}, nil
}

// ListLowStock productos activos con estado bajo, crítico o agotado.
func (uc *ProductUseCase) ListLowStock(ctx context.Context) ([]dto.ProductDTO, error) {
	return uc.listFiltered(ctx, func(p *entity.Product) bool {
		switch p.Status() {
		case entity.StatusLowStock, entity.StatusCritical, entity.StatusOutOfStock:
			return true
		}
		return false
	})
}

// ListNeedingReorder productos activos en o bajo el punto de reorden.
func (uc *ProductUseCase) ListNeedingReorder(ctx context.Context) ([]dto.ProductDTO, error) {
	return uc.listFiltered(ctx, func(p *entity.Product) bool { return p.NeedsReorder() })
}

func (uc *ProductUseCase) listFiltered(ctx context.Context, keep func(*entity.Product) bool) ([]dto.ProductDTO, error) {
	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		if keep(p) {
			result = append(result, dto.NewProductDTO(p))
		}
	}
	return result, nil
}

func valueOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
