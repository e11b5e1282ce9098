package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// EngineConfig parámetros del motor de movimientos.
type EngineConfig struct {
	MaxRetries   int           // reintentos ante conflicto de concurrencia (además del primer intento)
	RetryBackoff time.Duration // espera lineal entre reintentos: intento * RetryBackoff
}

// DefaultEngineConfig valores por defecto (LEDGER_MAX_COMMIT_RETRIES=5, LEDGER_RETRY_BACKOFF_MS=5).
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{MaxRetries: 5, RetryBackoff: 5 * time.Millisecond}
}

// MovementUseCase motor del ciclo de vida de movimientos: crea movimientos en draft, edita
// sus líneas mientras es posible y ejecuta las transiciones submit, confirm_available,
// commit y cancel. Los efectos sobre el libro se aplican exactamente una vez dentro de
// TxRunner.Run, con CAS sobre la versión del movimiento.
type MovementUseCase struct {
	txRunner      TxRunner
	movRepo       repository.MovementRepository
	stockRepo     repository.StockLevelRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	lowStock      *LowStockAggregator
	publisher     EventPublisher
	metrics       Metrics
	log           *logger.Logger
	cfg           EngineConfig
	now           func() time.Time
}

// NewMovementUseCase construye el motor. publisher y metrics pueden ser nil.
func NewMovementUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	stockRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	lowStock *LowStockAggregator,
	publisher EventPublisher,
	metrics Metrics,
	log *logger.Logger,
	cfg EngineConfig,
) *MovementUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &MovementUseCase{
		txRunner:      txRunner,
		movRepo:       movRepo,
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		lowStock:      lowStock,
		publisher:     publisher,
		metrics:       metrics,
		log:           log.Component("engine"),
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// MovementInput entrada para crear un movimiento.
type MovementInput struct {
	Type      entity.MovementType
	Reference string
	Lines     []entity.MovementLine
	CreatedBy string
}

// CreateMovement valida las líneas contra el tipo y el catálogo y persiste el movimiento en draft.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	lines := append([]entity.MovementLine(nil), in.Lines...)
	if err := inventory.ValidateLines(in.Type, lines); err != nil {
		return nil, err
	}
	if err := uc.checkCatalog(ctx, lines); err != nil {
		return nil, err
	}

	now := uc.now()
	m := &entity.Movement{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Status:    entity.MovementStatusDraft,
		Reference: in.Reference,
		Lines:     lines,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.movRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	uc.log.Info().Str("movement_id", m.ID).Str("type", string(m.Type)).Int("lines", len(lines)).Msg("movimiento creado")
	uc.publish(ctx, m, EventMovementCreated, in.CreatedBy, "", nil)
	return m, nil
}

// UpdateLines reemplaza las líneas de un movimiento en draft o waiting.
func (uc *MovementUseCase) UpdateLines(ctx context.Context, id string, lines []entity.MovementLine, userID string) (*entity.Movement, error) {
	lines = append([]entity.MovementLine(nil), lines...)
	var result *entity.Movement
	err := uc.retry(ctx, id, "update_lines", func() error {
		m, err := uc.load(ctx, id)
		if err != nil {
			return err
		}
		if !m.Status.Editable() {
			return &domain.InvalidStateError{MovementID: id, Status: string(m.Status), Action: "update_lines"}
		}
		if err := inventory.ValidateLines(m.Type, lines); err != nil {
			return err
		}
		if err := uc.checkCatalog(ctx, lines); err != nil {
			return err
		}
		prev := m.Version
		m.Lines = lines
		m.UpdatedAt = uc.now()
		if err := uc.movRepo.Update(ctx, m, prev); err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, result, EventMovementLinesUpdated, userID, "", nil)
	return result, nil
}

// Cancel atajo de Transition con la acción cancel.
func (uc *MovementUseCase) Cancel(ctx context.Context, id, userID string) (*entity.Movement, error) {
	return uc.Transition(ctx, id, inventory.ActionCancel, userID)
}

// transitionResult lo que una transición dejó confirmado.
type transitionResult struct {
	movement *entity.Movement
	reversal *entity.Movement
	deltas   []inventory.Delta
	noop     bool
}

// Transition ejecuta la acción sobre el movimiento. Una acción repetida cuyo destino es el
// estado actual devuelve el movimiento sin cambios. Ante domain.ErrConcurrencyConflict la
// transición completa (lectura, decisión, efectos y CAS) se reintenta hasta cfg.MaxRetries
// veces. Cualquier error deja el movimiento en su estado previo.
func (uc *MovementUseCase) Transition(ctx context.Context, id string, action inventory.Action, userID string) (*entity.Movement, error) {
	if !action.Valid() {
		return nil, domain.Validationf("acción desconocida %q", action)
	}
	start := time.Now()

	var res transitionResult
	err := uc.retry(ctx, id, string(action), func() error {
		var err error
		res, err = uc.transitionOnce(ctx, id, action, userID)
		return err
	})
	if err != nil {
		uc.metrics.RecordTransition(ctx, string(action), resultLabel(err), time.Since(start))
		uc.log.Debug().Err(err).Str("movement_id", id).Str("action", string(action)).Msg("transición rechazada")
		return nil, err
	}
	if res.noop {
		uc.metrics.RecordTransition(ctx, string(action), "noop", time.Since(start))
		return res.movement, nil
	}

	// Los efectos derivados ocurren después de la confirmación del libro.
	if len(res.deltas) > 0 {
		uc.refreshLowStock(ctx, res.deltas)
	}
	uc.metrics.RecordTransition(ctx, string(action), "ok", time.Since(start))

	m := res.movement
	switch {
	case res.reversal != nil:
		uc.log.Info().Str("movement_id", m.ID).Str("reversal_id", res.reversal.ID).Msg("movimiento revertido")
		uc.publish(ctx, m, EventMovementReversed, userID, res.reversal.ID, res.deltas)
	case m.Status == entity.MovementStatusDone:
		uc.log.Info().Str("movement_id", m.ID).Int("keys", len(res.deltas)).Msg("movimiento confirmado en el libro")
		uc.publish(ctx, m, EventMovementDone, userID, "", res.deltas)
	default:
		uc.log.Debug().Str("movement_id", m.ID).Str("status", string(m.Status)).Msg("transición aplicada")
		uc.publish(ctx, m, statusEvent(m.Status), userID, "", nil)
	}
	return m, nil
}

func (uc *MovementUseCase) transitionOnce(ctx context.Context, id string, action inventory.Action, userID string) (transitionResult, error) {
	m, err := uc.load(ctx, id)
	if err != nil {
		return transitionResult{}, err
	}
	out, err := inventory.Next(m, action)
	if err != nil {
		return transitionResult{}, err
	}
	if out.NoOp {
		return transitionResult{movement: m, noop: true}, nil
	}

	now := uc.now()
	prev := m.Version

	switch out.Effect {
	case inventory.EffectNone:
		m.Status = out.To
		m.UpdatedAt = now
		if out.To == entity.MovementStatusCancelled {
			m.CancelledAt = &now
		}
		if err := uc.movRepo.Update(ctx, m, prev); err != nil {
			return transitionResult{}, err
		}
		return transitionResult{movement: m}, nil

	case inventory.EffectCheckAvailability:
		if err := uc.checkAvailability(ctx, m); err != nil {
			return transitionResult{}, err
		}
		m.Status = out.To
		m.UpdatedAt = now
		if err := uc.movRepo.Update(ctx, m, prev); err != nil {
			return transitionResult{}, err
		}
		return transitionResult{movement: m}, nil

	case inventory.EffectApply:
		deltas := inventory.Deltas(m)
		err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockLevelRepository) error {
			if err := applyDeltas(ctx, stockRepo, deltas); err != nil {
				return err
			}
			m.Status = out.To
			m.DoneAt = &now
			m.UpdatedAt = now
			return movRepo.Update(ctx, m, prev)
		})
		if err != nil {
			return transitionResult{}, err
		}
		return transitionResult{movement: m, deltas: deltas}, nil

	case inventory.EffectReverse:
		rev := newReversal(m, userID, now)
		deltas := inventory.Deltas(rev)
		err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockLevelRepository) error {
			if err := applyDeltas(ctx, stockRepo, deltas); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, rev); err != nil {
				return err
			}
			m.ReversedBy = rev.ID
			m.UpdatedAt = now
			return movRepo.Update(ctx, m, prev)
		})
		if err != nil {
			return transitionResult{}, err
		}
		return transitionResult{movement: m, reversal: rev, deltas: deltas}, nil
	}
	return transitionResult{}, fmt.Errorf("efecto desconocido %d", out.Effect)
}

// applyDeltas aplica en orden de llave; el primer fallo aborta la transacción completa.
func applyDeltas(ctx context.Context, stockRepo repository.StockLevelRepository, deltas []inventory.Delta) error {
	for _, d := range deltas {
		if _, err := stockRepo.ApplyDelta(ctx, d.Key.ProductID, d.Key.WarehouseID, d.Delta); err != nil {
			return err
		}
	}
	return nil
}

// newReversal movimiento compensatorio: mismas líneas y tipo, nace en done, enlazado al original.
func newReversal(m *entity.Movement, userID string, now time.Time) *entity.Movement {
	return &entity.Movement{
		ID:         uuid.New().String(),
		Type:       m.Type,
		Status:     entity.MovementStatusDone,
		Reference:  "Reversa de " + m.ID,
		Lines:      append([]entity.MovementLine(nil), m.Lines...),
		ReversalOf: m.ID,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
		DoneAt:     &now,
	}
}

// checkAvailability lectura puntual del stock en origen, sin reserva.
func (uc *MovementUseCase) checkAvailability(ctx context.Context, m *entity.Movement) error {
	for _, req := range inventory.SourceRequirements(m) {
		lvl, err := uc.stockRepo.Get(ctx, req.Key.ProductID, req.Key.WarehouseID)
		if err != nil {
			return err
		}
		if lvl.Quantity < req.Delta {
			return &domain.StockError{
				Err:         domain.ErrInsufficientStock,
				ProductID:   req.Key.ProductID,
				WarehouseID: req.Key.WarehouseID,
				Requested:   req.Delta,
				Available:   lvl.Quantity,
			}
		}
	}
	return nil
}

// checkCatalog verifica que productos y bodegas existan y que las bodegas estén activas.
func (uc *MovementUseCase) checkCatalog(ctx context.Context, lines []entity.MovementLine) error {
	for _, id := range inventory.ProductIDs(lines) {
		p, err := uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.Validationf("el producto %s no existe", id)
		}
	}
	for _, id := range inventory.WarehouseIDs(lines) {
		w, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.Validationf("la bodega %s no existe", id)
		}
		if !w.Active {
			return domain.Validationf("la bodega %s está inactiva", w.Code)
		}
	}
	return nil
}

func (uc *MovementUseCase) load(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// retry reintenta fn mientras devuelva domain.ErrConcurrencyConflict, con espera lineal.
func (uc *MovementUseCase) retry(ctx context.Context, id, action string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt > uc.cfg.MaxRetries {
			uc.log.Warn().Str("movement_id", id).Str("action", action).Int("attempts", attempt).Msg("conflicto de concurrencia persistente")
			return fmt.Errorf("%w: movimiento %s tras %d intentos", domain.ErrConcurrencyConflict, id, attempt)
		}
		uc.metrics.RecordRetry(ctx, action)
		uc.log.Warn().Str("movement_id", id).Str("action", action).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
		if uc.cfg.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * uc.cfg.RetryBackoff):
			}
		}
	}
}

func (uc *MovementUseCase) refreshLowStock(ctx context.Context, deltas []inventory.Delta) {
	if uc.lowStock == nil {
		return
	}
	ids := make([]string, 0, len(deltas))
	for id := range inventory.ProductDeltas(deltas) {
		ids = append(ids, id)
	}
	if err := uc.lowStock.Refresh(ctx, ids...); err != nil {
		// El índice queda desactualizado para esos productos hasta la próxima reconstrucción.
		uc.log.Error().Err(err).Strs("product_ids", ids).Msg("no se pudo actualizar el índice de bajo stock")
	}
}

func (uc *MovementUseCase) publish(ctx context.Context, m *entity.Movement, typ, actor, reversalID string, deltas []inventory.Delta) {
	ev := MovementEvent{
		Type:         typ,
		MovementID:   m.ID,
		MovementType: m.Type,
		Status:       m.Status,
		ReversalID:   reversalID,
		Actor:        actor,
		OccurredAt:   uc.now(),
	}
	for _, d := range deltas {
		ev.Changes = append(ev.Changes, StockChange{ProductID: d.Key.ProductID, WarehouseID: d.Key.WarehouseID, Delta: d.Delta})
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Error().Err(err).Str("event", typ).Str("movement_id", m.ID).Msg("no se pudo publicar el evento")
	}
}

func statusEvent(s entity.MovementStatus) string {
	switch s {
	case entity.MovementStatusWaiting:
		return EventMovementSubmitted
	case entity.MovementStatusReady:
		return EventMovementReady
	case entity.MovementStatusCancelled:
		return EventMovementCancelled
	}
	return EventMovementDone
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNegativeStock):
		return "negative_stock"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}
