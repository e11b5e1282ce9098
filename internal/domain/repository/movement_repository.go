package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter criterios de búsqueda del historial de movimientos.
type MovementFilter struct {
	Type        entity.MovementType     // vacío = todos
	Statuses    []entity.MovementStatus // vacío = todos
	ProductID   string
	WarehouseID string // coincide con origen o destino de alguna línea
	From        *time.Time
	To          *time.Time
}

// MovementCursor posición de paginación por llave (created_at DESC, id DESC).
type MovementCursor struct {
	CreatedAt time.Time
	ID        string
}

// MovementRepository define el puerto de persistencia de movimientos y sus líneas.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// Update persiste estado, líneas y enlaces si la versión almacenada coincide con
	// expectedVersion; si no, devuelve domain.ErrConcurrencyConflict. Incrementa Version.
	Update(ctx context.Context, movement *entity.Movement, expectedVersion int64) error
	CountByTypeAndStatus(ctx context.Context, movementType entity.MovementType, statuses []entity.MovementStatus) (int, error)
	// List devuelve hasta limit movimientos posteriores al cursor (nil = desde el inicio).
	List(ctx context.Context, filter MovementFilter, after *MovementCursor, limit int) ([]*entity.Movement, error)
	// IsProductReferenced indica si alguna línea de movimiento referencia el producto.
	IsProductReferenced(ctx context.Context, productID string) (bool, error)
}
