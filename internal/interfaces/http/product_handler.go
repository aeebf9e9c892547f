package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP de productos y su ledger.
type ProductHandler struct {
	uc         *usecase.ProductUseCase
	mutator    *ledger.ApplyStockChangeUseCase
	aggregator *metrics.AggregatorUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, mutator *ledger.ApplyStockChangeUseCase, aggregator *metrics.AggregatorUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, mutator: mutator, aggregator: aggregator}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        page   query  int  false  "Página"  default(1)
// @Param        limit  query  int  false  "Límite"  default(10)
// @Success      200    {object}  map[string]interface{}
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if limit > 100 {
		limit = 100
	}
	products, pageInfo, err := h.uc.List(c.Context(), page, limit)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"products": products, "pagination": pageInfo})
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Un cambio de current_stock se aplica como ADJUSTMENT y genera
//
//	su registro en el ledger; el resto de campos se actualiza directo.
//
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar producto (baja lógica)
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.Context(), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto desactivado"})
}

// ChangeStock godoc
// @Summary      Aplicar movimiento de stock
// @Description  Aplica IN/OUT/ADJUSTMENT/RETURN/DAMAGE sobre el producto y
//
//	agrega el registro al ledger en la misma transacción. Para
//	ADJUSTMENT, quantity es el stock objetivo absoluto.
//
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.StockChangeRequest  true  "type, quantity, reason, reference, performed_by"
// @Success      200   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [post]
func (h *ProductHandler) ChangeStock(c *fiber.Ctx) error {
	var in dto.StockChangeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.mutator.Execute(c.Context(), ledger.ApplyStockChangeInput{
		ProductID:   c.Params("id"),
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Reference:   in.Reference,
		PerformedBy: in.PerformedBy,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.StockChangeResponse{
		Product:     dto.NewProductDTO(result.Product),
		Transaction: dto.NewLedgerRecordDTO(result.Record),
	})
}

// ListTransactions godoc
// @Summary      Ledger del producto
// @Tags         products
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        page   query  int     false  "Página"  default(1)
// @Param        limit  query  int     false  "Límite"  default(20)
// @Success      200    {object}  map[string]interface{}
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/products/{id}/transactions [get]
func (h *ProductHandler) ListTransactions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	records, pageInfo, err := h.uc.ListTransactions(c.Context(), c.Params("id"), page, limit)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": records, "pagination": pageInfo})
}

// ListLowStock godoc
// @Summary      Alertas de bajo stock
// @Description  Productos activos en estado Low Stock, Critical u Out of Stock.
// @Tags         products
// @Produce      json
// @Success      200  {array}  dto.ProductDTO
// @Router       /api/products/alerts/low-stock [get]
func (h *ProductHandler) ListLowStock(c *fiber.Ctx) error {
	out, err := h.uc.ListLowStock(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// ListNeedingReorder godoc
// @Summary      Alertas de reorden
// @Description  Productos activos en o bajo su punto de reorden.
// @Tags         products
// @Produce      json
// @Success      200  {array}  dto.ProductDTO
// @Router       /api/products/alerts/reorder [get]
func (h *ProductHandler) ListNeedingReorder(c *fiber.Ctx) error {
	out, err := h.uc.ListNeedingReorder(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// RecomputeMetrics godoc
// @Summary      Recalcular métricas del producto
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductMetricsDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/metrics/recompute [post]
func (h *ProductHandler) RecomputeMetrics(c *fiber.Ctx) error {
	m, err := h.aggregator.RecomputeProductMetrics(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ProductMetricsDTO{
		AvgDailySales: m.AvgDailySales,
		TurnoverRate:  m.TurnoverRate,
		TotalSold:     m.TotalSold,
		TotalOrdered:  m.TotalOrdered,
		LastRestocked: m.LastRestocked,
		LastSold:      m.LastSold,
	})
}
