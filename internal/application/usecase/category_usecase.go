package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías. El rollup de métricas lo recalcula el
// agregador; aquí solo se gestiona el ciclo de vida.
type CategoryUseCase struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryUseCase {
	return &CategoryUseCase{categoryRepo: categoryRepo, productRepo: productRepo}
}

// Create crea una categoría. El código va en mayúsculas, máximo 3 caracteres.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryDTO, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if name == "" || !entity.ValidCategoryCode(code) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Code:        code,
		Description: in.Description,
		ParentID:    in.ParentID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	result := dto.NewCategoryDTO(category)
	return &result, nil
}

// Get obtiene una categoría.
func (uc *CategoryUseCase) Get(ctx context.Context, id string) (*dto.CategoryDTO, error) {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	result := dto.NewCategoryDTO(category)
	return &result, nil
}

// List lista las categorías activas.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryDTO, error) {
	categories, err := uc.categoryRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		result = append(result, dto.NewCategoryDTO(c))
	}
	return result, nil
}

// Update actualiza nombre, descripción o categoría padre.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryDTO, error) {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.ParentID != nil {
		category.ParentID = *in.ParentID
	}
	category.UpdatedAt = time.Now()

	if err := uc.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	result := dto.NewCategoryDTO(category)
	return &result, nil
}

// Delete elimina una categoría sin productos asociados. Con productos
// referenciándola devuelve ErrConflict.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}

	count, err := uc.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	return uc.categoryRepo.Delete(ctx, id)
}
