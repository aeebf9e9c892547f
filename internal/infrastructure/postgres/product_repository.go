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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// productColumns columnas en el orden que espera scanProduct.
const productColumns = `
	id, sku, category_id, name, description, current_stock,
	min_threshold, max_threshold, reorder_point, critical_level,
	cost_price, selling_price, currency,
	supplier_name, supplier_email, supplier_phone, lead_time_days,
	velocity, avg_daily_sales, turnover_rate, total_sold, total_ordered,
	last_restocked, last_sold,
	next_period_demand, confidence, suggested_reorder_qty, predicted_stockout,
	is_active, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.CategoryID, &p.Name, &p.Description, &p.CurrentStock,
		&p.Thresholds.Min, &p.Thresholds.Max, &p.Thresholds.ReorderPoint, &p.Thresholds.CriticalLevel,
		&p.Price.Cost, &p.Price.Selling, &p.Price.Currency,
		&p.Supplier.Name, &p.Supplier.Email, &p.Supplier.Phone, &p.Supplier.LeadTimeDays,
		&p.Velocity, &p.Metrics.AvgDailySales, &p.Metrics.TurnoverRate, &p.Metrics.TotalSold, &p.Metrics.TotalOrdered,
		&p.Metrics.LastRestocked, &p.Metrics.LastSold,
		&p.Predictions.NextPeriodDemand, &p.Predictions.Confidence, &p.Predictions.SuggestedReorderQty, &p.Predictions.PredictedStockout,
		&p.IsActive, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (
			id, sku, category_id, name, description, current_stock,
			min_threshold, max_threshold, reorder_point, critical_level,
			cost_price, selling_price, currency,
			supplier_name, supplier_email, supplier_phone, lead_time_days,
			velocity, avg_daily_sales, turnover_rate, total_sold, total_ordered,
			last_restocked, last_sold,
			next_period_demand, confidence, suggested_reorder_qty, predicted_stockout,
			is_active, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32
		)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.CategoryID, p.Name, p.Description, p.CurrentStock,
		p.Thresholds.Min, p.Thresholds.Max, p.Thresholds.ReorderPoint, p.Thresholds.CriticalLevel,
		p.Price.Cost, p.Price.Selling, p.Price.Currency,
		p.Supplier.Name, p.Supplier.Email, p.Supplier.Phone, p.Supplier.LeadTimeDays,
		p.Velocity, p.Metrics.AvgDailySales, p.Metrics.TurnoverRate, p.Metrics.TotalSold, p.Metrics.TotalOrdered,
		p.Metrics.LastRestocked, p.Metrics.LastSold,
		p.Predictions.NextPeriodDemand, p.Predictions.Confidence, p.Predictions.SuggestedReorderQty, p.Predictions.PredictedStockout,
		p.IsActive, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
// Serializa los escritores concurrentes sobre el mismo producto.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// Update persiste todos los campos mutables e incrementa la versión.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET
			sku = $2, category_id = $3, name = $4, description = $5, current_stock = $6,
			min_threshold = $7, max_threshold = $8, reorder_point = $9, critical_level = $10,
			cost_price = $11, selling_price = $12, currency = $13,
			supplier_name = $14, supplier_email = $15, supplier_phone = $16, lead_time_days = $17,
			velocity = $18, avg_daily_sales = $19, turnover_rate = $20, total_sold = $21, total_ordered = $22,
			last_restocked = $23, last_sold = $24,
			is_active = $25, version = version + 1, updated_at = $26
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.CategoryID, p.Name, p.Description, p.CurrentStock,
		p.Thresholds.Min, p.Thresholds.Max, p.Thresholds.ReorderPoint, p.Thresholds.CriticalLevel,
		p.Price.Cost, p.Price.Selling, p.Price.Currency,
		p.Supplier.Name, p.Supplier.Email, p.Supplier.Phone, p.Supplier.LeadTimeDays,
		p.Velocity, p.Metrics.AvgDailySales, p.Metrics.TurnoverRate, p.Metrics.TotalSold, p.Metrics.TotalOrdered,
		p.Metrics.LastRestocked, p.Metrics.LastSold,
		p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateMetrics persiste métricas y velocidad (usado por el agregador).
func (r *ProductRepo) UpdateMetrics(ctx context.Context, productID string, m entity.ProductMetrics, velocity string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE products SET
			avg_daily_sales = $2, turnover_rate = $3, total_sold = $4, total_ordered = $5,
			last_restocked = $6, last_sold = $7, velocity = $8, updated_at = now()
		WHERE id = $1`,
		productID, m.AvgDailySales, m.TurnoverRate, m.TotalSold, m.TotalOrdered,
		m.LastRestocked, m.LastSold, velocity,
	)
	if err != nil {
		return fmt.Errorf("update product metrics: %w", err)
	}
	return nil
}

// UpdatePredictions persiste la proyección de demanda (write-back del estimador).
func (r *ProductRepo) UpdatePredictions(ctx context.Context, productID string, pred entity.Predictions) error {
	_, err := r.q.Exec(ctx, `
		UPDATE products SET
			next_period_demand = $2, confidence = $3, suggested_reorder_qty = $4,
			predicted_stockout = $5, updated_at = now()
		WHERE id = $1`,
		productID, pred.NextPeriodDemand, pred.Confidence, pred.SuggestedReorderQty, pred.PredictedStockout,
	)
	if err != nil {
		return fmt.Errorf("update product predictions: %w", err)
	}
	return nil
}

// List lista productos con paginación. limit <= 0 devuelve todos.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	var rows pgx.Rows
	var err error
	if limit > 0 {
		rows, err = r.q.Query(ctx, query+` LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		rows, err = r.q.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListActive lista los productos activos.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListByCategory lista los productos de una categoría.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID string, activeOnly bool) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	rows, err := r.q.Query(ctx, query+` ORDER BY created_at DESC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// CountByCategory cuenta los productos de una categoría (activos o no).
func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return count, nil
}

// Count cuenta todos los productos.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// Deactivate baja lógica del producto.
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
