package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	// Create falla con domain.ErrDuplicate si el código ya existe.
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
}
