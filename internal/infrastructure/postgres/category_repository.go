package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `
	id, name, code, description, parent_id,
	total_products, total_value, avg_turnover_rate, avg_days_in_stock,
	is_active, created_at, updated_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una nueva categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Code, c.Description, c.ParentID,
		c.Metrics.TotalProducts, c.Metrics.TotalValue, c.Metrics.AvgTurnoverRate, c.Metrics.AvgDaysInStock,
		c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx,
		`SELECT `+categorySelectColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetByName obtiene una categoría por nombre.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx,
		`SELECT `+categorySelectColumns+` FROM categories WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// List lista categorías, opcionalmente solo activas.
func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	query := `SELECT ` + categorySelectColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	rows, err := r.q.Query(ctx, query+` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update actualiza los campos editables de la categoría.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE categories SET
			name = $2, description = $3, parent_id = NULLIF($4, ''), is_active = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.ParentID, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateMetrics persiste el rollup recomputado (usado por el agregador).
func (r *CategoryRepo) UpdateMetrics(ctx context.Context, categoryID string, m entity.CategoryMetrics) error {
	_, err := r.q.Exec(ctx, `
		UPDATE categories SET
			total_products = $2, total_value = $3, avg_turnover_rate = $4,
			avg_days_in_stock = $5, updated_at = now()
		WHERE id = $1`,
		categoryID, m.TotalProducts, m.TotalValue, m.AvgTurnoverRate, m.AvgDaysInStock,
	)
	if err != nil {
		return fmt.Errorf("update category metrics: %w", err)
	}
	return nil
}

// Delete elimina la categoría. El caller verifica antes que no tenga productos.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// categorySelectColumns expresa parent_id como texto vacío cuando es NULL.
const categorySelectColumns = `
	id, name, code, description, COALESCE(parent_id::text, ''),
	total_products, total_value, avg_turnover_rate, avg_days_in_stock,
	is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Code, &c.Description, &c.ParentID,
		&c.Metrics.TotalProducts, &c.Metrics.TotalValue, &c.Metrics.AvgTurnoverRate, &c.Metrics.AvgDaysInStock,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
