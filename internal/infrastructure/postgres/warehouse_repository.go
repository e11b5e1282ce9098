package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, code, name, active, COALESCE(address, ''), created_at, updated_at`

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouses (id, code, name, active, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.Code, w.Name, w.Active, nullable(w.Address), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.q.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// Update actualiza código, nombre, estado y dirección.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE warehouses SET code = $2, name = $3, active = $4, address = $5, updated_at = $6
		WHERE id = $1`,
		w.ID, w.Code, w.Name, w.Active, nullable(w.Address), w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List bodegas ordenadas por código; limit 0 = sin límite.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses ORDER BY code LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	list := []*entity.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Active, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
