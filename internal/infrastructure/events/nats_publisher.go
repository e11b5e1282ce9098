// Package events publica los eventos del ciclo de vida de movimientos.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ inventory.EventPublisher = (*NATSPublisher)(nil)

// conn subconjunto de *nats.Conn que usa el publicador.
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSConfig configuración del publicador.
type NATSConfig struct {
	SubjectPrefix string
	MaxAttempts   int
	RetryDelay    time.Duration
}

// DefaultNATSConfig valores por defecto: prefijo "ledger", 3 intentos.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{SubjectPrefix: "ledger", MaxAttempts: 3, RetryDelay: 50 * time.Millisecond}
}

// NATSPublisher publica cada evento como JSON en <prefijo>.<tipo>, ej: ledger.movement.done.
type NATSPublisher struct {
	conn conn
	cfg  NATSConfig
	log  *logger.Logger
}

// Connect abre la conexión a NATS con reconexión ilimitada.
func Connect(url string, log *logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("stock-ledger"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats desconectado")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar nats: %w", err)
	}
	return nc, nil
}

// NewNATSPublisher construye el publicador sobre una conexión abierta.
func NewNATSPublisher(nc *nats.Conn, cfg NATSConfig, log *logger.Logger) *NATSPublisher {
	return newPublisher(nc, cfg, log)
}

func newPublisher(c conn, cfg NATSConfig, log *logger.Logger) *NATSPublisher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &NATSPublisher{conn: c, cfg: cfg, log: log.Component("events")}
}

// Publish serializa y publica con reintentos acotados.
func (p *NATSPublisher) Publish(ctx context.Context, ev inventory.MovementEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	subject := p.subject(ev.Type)

	for attempt := 1; ; attempt++ {
		err = p.conn.Publish(subject, data)
		if err == nil {
			p.log.Debug().Str("subject", subject).Str("movement_id", ev.MovementID).Msg("evento publicado")
			return nil
		}
		if attempt >= p.cfg.MaxAttempts {
			return fmt.Errorf("publicar %s tras %d intentos: %w", subject, attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.RetryDelay):
		}
	}
}

func (p *NATSPublisher) subject(eventType string) string {
	if p.cfg.SubjectPrefix == "" {
		return eventType
	}
	return p.cfg.SubjectPrefix + "." + eventType
}
