package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `
	id, product_id, type, quantity, previous_stock, new_stock,
	reason, reference, performed_by, unit_cost, total_cost, created_at`

// LedgerRepo implementación del puerto LedgerRepository sobre PostgreSQL.
// La tabla es append-only: este adaptador no emite UPDATE ni DELETE sobre
// stock_ledger, y la tabla lo refuerza con permisos/trigger a nivel de BD.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta un registro. Único camino de escritura del ledger.
func (r *LedgerRepo) Append(ctx context.Context, rec *entity.LedgerRecord) error {
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.Type, rec.Quantity, rec.PreviousStock, rec.NewStock,
		rec.Reason, rec.Reference, rec.PerformedBy, rec.UnitCost, rec.TotalCost, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerRecord, error) {
	rec, err := scanLedgerRecord(r.q.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM stock_ledger WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger record: %w", err)
	}
	return rec, nil
}

// ListByProduct lista registros de un producto, más recientes primero.
// typeFilter vacío = todos; from/to nil = sin límite; limit <= 0 = todos.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID, typeFilter string, from, to *time.Time, limit, offset int) ([]*entity.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE product_id = $1`
	args := []any{productID}
	if typeFilter != "" {
		args = append(args, typeFilter)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger by product: %w", err)
	}
	defer rows.Close()
	return collectLedgerRecords(rows)
}

// CountByProduct cuenta los registros de un producto.
func (r *LedgerRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM stock_ledger WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ledger by product: %w", err)
	}
	return count, nil
}

// ListByDateRange lista todos los registros del período, más antiguos primero.
func (r *LedgerRepo) ListByDateRange(ctx context.Context, from, to *time.Time) ([]*entity.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE true`
	args := []any{}
	if from != nil {
		args = append(args, *from)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger by date range: %w", err)
	}
	defer rows.Close()
	return collectLedgerRecords(rows)
}

// ListRecent últimos registros, más recientes primero.
func (r *LedgerRepo) ListRecent(ctx context.Context, limit int) ([]*entity.LedgerRecord, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+ledgerColumns+` FROM stock_ledger ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent ledger: %w", err)
	}
	defer rows.Close()
	return collectLedgerRecords(rows)
}

// SumQuantity suma las cantidades de un tipo de movimiento en el período.
// COALESCE devuelve cero si no hay movimientos.
func (r *LedgerRepo) SumQuantity(ctx context.Context, productID, typ string, from, to time.Time) (int, error) {
	var sum int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_ledger
		WHERE product_id = $1 AND type = $2 AND created_at >= $3 AND created_at <= $4`,
		productID, typ, from, to).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum ledger quantity: %w", err)
	}
	return sum, nil
}

func scanLedgerRecord(row pgx.Row) (*entity.LedgerRecord, error) {
	var rec entity.LedgerRecord
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.Type, &rec.Quantity, &rec.PreviousStock, &rec.NewStock,
		&rec.Reason, &rec.Reference, &rec.PerformedBy, &rec.UnitCost, &rec.TotalCost, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectLedgerRecords(rows pgx.Rows) ([]*entity.LedgerRecord, error) {
	var records []*entity.LedgerRecord
	for rows.Next() {
		rec, err := scanLedgerRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
