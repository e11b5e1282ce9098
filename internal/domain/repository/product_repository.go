package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Create falla con domain.ErrDuplicate si el SKU ya existe.
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update no modifica el SKU.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListAll(ctx context.Context) ([]*entity.Product, error)
	Count(ctx context.Context) (int, error)
	// Delete falla con domain.ErrConflict si hay líneas de movimiento o stock distinto de cero.
	Delete(ctx context.Context, id string) error
}
