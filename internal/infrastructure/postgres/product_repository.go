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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, COALESCE(category_id, ''), unit_of_measure, reorder_threshold, created_at, updated_at`

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, category_id, unit_of_measure, reorder_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, nullable(p.CategoryID), p.UnitOfMeasure, p.ReorderThreshold, p.CreatedAt, p.UpdatedAt,
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
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU normalizado.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// Update actualiza un producto existente. El SKU no se modifica.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, category_id = $3, unit_of_measure = $4, reorder_threshold = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.Name, nullable(p.CategoryID), p.UnitOfMeasure, p.ReorderThreshold, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List productos por nombre; limit 0 = sin límite.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
}

func (r *ProductRepo) ListAll(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Delete elimina el producto y sus filas de stock en cero. Falla con ErrConflict si alguna
// línea de movimiento lo referencia o si tiene stock distinto de cero.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		var exists, referenced, stocked bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM products WHERE id = $1),
			       EXISTS (SELECT 1 FROM movement_lines WHERE product_id = $1),
			       EXISTS (SELECT 1 FROM stock_levels WHERE product_id = $1 AND quantity <> 0)`, id,
		).Scan(&exists, &referenced, &stocked)
		if err != nil {
			return fmt.Errorf("check product references: %w", err)
		}
		switch {
		case !exists:
			return domain.ErrNotFound
		case referenced, stocked:
			return domain.ErrConflict
		}
		if _, err := tx.Exec(ctx, `DELETE FROM stock_levels WHERE product_id = $1`, id); err != nil {
			return mapError("delete zero stock rows", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			return mapError("delete product", err)
		}
		return nil
	})
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.UnitOfMeasure, &p.ReorderThreshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
