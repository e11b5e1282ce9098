package events

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ inventory.EventPublisher = (*LogPublisher)(nil)

// LogPublisher escribe los eventos en el log cuando no hay NATS configurado.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.Component("events")}
}

func (p *LogPublisher) Publish(_ context.Context, ev inventory.MovementEvent) error {
	p.log.Info().
		Str("event", ev.Type).
		Str("movement_id", ev.MovementID).
		Str("status", string(ev.Status)).
		Int("changes", len(ev.Changes)).
		Msg("evento de movimiento")
	return nil
}
