package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad del commit de un movimiento: o se aplican todas las filas del libro y el
// cambio de estado, o nada. Un conflicto de escritura concurrente se reporta como
// domain.ErrConcurrencyConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLevelRepository,
	) error) error
}

// Tipos de evento del ciclo de vida.
const (
	EventMovementCreated      = "movement.created"
	EventMovementLinesUpdated = "movement.lines_updated"
	EventMovementSubmitted    = "movement.submitted"
	EventMovementReady        = "movement.ready"
	EventMovementDone         = "movement.done"
	EventMovementCancelled    = "movement.cancelled"
	EventMovementReversed     = "movement.reversed"
)

// StockChange efecto aplicado sobre una fila del libro.
type StockChange struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Delta       int64  `json:"delta"`
}

// MovementEvent evento publicado después de que el cambio quedó confirmado.
type MovementEvent struct {
	Type         string                `json:"type"`
	MovementID   string                `json:"movement_id"`
	MovementType entity.MovementType   `json:"movement_type"`
	Status       entity.MovementStatus `json:"status"`
	ReversalID   string                `json:"reversal_id,omitempty"`
	Changes      []StockChange         `json:"changes,omitempty"`
	Actor        string                `json:"actor,omitempty"`
	OccurredAt   time.Time             `json:"occurred_at"`
}

// EventPublisher publica eventos del ciclo de vida (NATS en producción). Un fallo de
// publicación se registra en el log pero no revierte el cambio ya confirmado.
type EventPublisher interface {
	Publish(ctx context.Context, ev MovementEvent) error
}

// Metrics instrumentación del motor.
type Metrics interface {
	RecordTransition(ctx context.Context, action, result string, elapsed time.Duration)
	RecordRetry(ctx context.Context, action string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, MovementEvent) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordTransition(context.Context, string, string, time.Duration) {}
func (nopMetrics) RecordRetry(context.Context, string)                            {}
