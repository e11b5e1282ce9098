package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo libro de stock sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const stockColumns = `product_id, warehouse_id, quantity, version, updated_at`

// maxBigint tope de los totales por producto: SUM(bigint) es numeric y puede exceder BIGINT.
const maxBigint = `9223372036854775807`

// Get obtiene el nivel actual; sin fila devuelve cantidad 0.
func (r *StockLevelRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2`
	s, err := scanStockLevel(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, mapError("get stock level", err)
	}
	return s, nil
}

// ApplyDelta bloquea la fila (FOR UPDATE), valida el resultado y hace upsert.
// El CHECK quantity >= 0 de la tabla queda como respaldo.
func (r *StockLevelRepo) ApplyDelta(ctx context.Context, productID, warehouseID string, delta int64) (int64, error) {
	var current int64
	err := r.q.QueryRow(ctx,
		`SELECT quantity FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`,
		productID, warehouseID,
	).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError("lock stock level", err)
	}
	if delta > 0 && current > math.MaxInt64-delta {
		return 0, domain.Validationf("stock de %s en %s excede el máximo", productID, warehouseID)
	}
	if current+delta < 0 {
		return 0, &domain.StockError{
			Err:         domain.ErrNegativeStock,
			ProductID:   productID,
			WarehouseID: warehouseID,
			Requested:   -delta,
			Available:   current,
		}
	}

	query := `
		INSERT INTO stock_levels (product_id, warehouse_id, quantity, version, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity,
		              version = stock_levels.version + 1,
		              updated_at = now()
		RETURNING quantity`
	var next int64
	if err := r.q.QueryRow(ctx, query, productID, warehouseID, delta).Scan(&next); err != nil {
		return 0, mapError("apply stock delta", err)
	}
	return next, nil
}

// ListByWarehouse filas de la bodega ordenadas por producto.
func (r *StockLevelRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_levels WHERE warehouse_id = $1 ORDER BY product_id`, warehouseID)
}

// ListByProduct filas del producto ordenadas por bodega.
func (r *StockLevelRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLevel, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_levels WHERE product_id = $1 ORDER BY warehouse_id`, productID)
}

func (r *StockLevelRepo) TotalByProduct(ctx context.Context, productID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT LEAST(COALESCE(SUM(quantity), 0), `+maxBigint+`)::BIGINT FROM stock_levels WHERE product_id = $1`, productID,
	).Scan(&total)
	if err != nil {
		return 0, mapError("total by product", err)
	}
	return total, nil
}

func (r *StockLevelRepo) Totals(ctx context.Context) (map[string]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, LEAST(SUM(quantity), `+maxBigint+`)::BIGINT FROM stock_levels GROUP BY product_id`)
	if err != nil {
		return nil, mapError("stock totals", err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan stock total: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}

func (r *StockLevelRepo) list(ctx context.Context, query string, arg string) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError("list stock levels", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		s, err := scanStockLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStockLevel(row pgx.Row) (*entity.StockLevel, error) {
	var s entity.StockLevel
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.Version, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
