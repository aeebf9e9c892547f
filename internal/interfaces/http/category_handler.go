package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// CategoryHandler maneja las peticiones HTTP de categorías.
type CategoryHandler struct {
	uc         *usecase.CategoryUseCase
	aggregator *metrics.AggregatorUseCase
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase, aggregator *metrics.AggregatorUseCase) *CategoryHandler {
	return &CategoryHandler{uc: uc, aggregator: aggregator}
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "name, code (máx 3 caracteres), description, parent_id"
// @Success      201   {object}  dto.CategoryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
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
// @Summary      Obtener categoría por ID
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar categorías activas
// @Tags         categories
// @Produce      json
// @Success      200  {array}  dto.CategoryDTO
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.UpdateCategoryRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.CategoryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría
// @Description  Solo categorías sin productos asociados; con productos devuelve 409.
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "categoría eliminada"})
}

// RecomputeMetrics godoc
// @Summary      Recalcular rollup de la categoría
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryMetricsDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id}/metrics/recompute [post]
func (h *CategoryHandler) RecomputeMetrics(c *fiber.Ctx) error {
	rollup, err := h.aggregator.RecomputeCategoryMetrics(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.CategoryMetricsDTO{
		TotalProducts:   rollup.TotalProducts,
		TotalValue:      rollup.TotalValue,
		AvgTurnoverRate: rollup.AvgTurnoverRate,
		AvgDaysInStock:  rollup.AvgDaysInStock,
	})
}
