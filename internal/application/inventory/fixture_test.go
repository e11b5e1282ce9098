package inventory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ledger arma el motor completo sobre el store en memoria.
type ledger struct {
	store      *memory.Store
	products   *memory.ProductRepo
	warehouses *memory.WarehouseRepo
	stock      *memory.StockLevelRepo
	movRepo    *memory.MovementRepo
	lowStock   *appinv.LowStockAggregator
	engine     *appinv.MovementUseCase
	queries    *appinv.QueryUseCase
	events     *recordingPublisher
	metrics    *recordingMetrics
}

type ledgerOption func(*ledgerOptions)

type ledgerOptions struct {
	wrap func(appinv.TxRunner) appinv.TxRunner
	cfg  appinv.EngineConfig
}

func withRunner(wrap func(appinv.TxRunner) appinv.TxRunner) ledgerOption {
	return func(o *ledgerOptions) { o.wrap = wrap }
}

func withRetries(n int) ledgerOption {
	return func(o *ledgerOptions) { o.cfg.MaxRetries = n }
}

func newLedger(opts ...ledgerOption) *ledger {
	o := ledgerOptions{cfg: appinv.EngineConfig{MaxRetries: 5}}
	for _, fn := range opts {
		fn(&o)
	}
	s := memory.NewStore()
	l := &ledger{
		store:      s,
		products:   memory.NewProductRepository(s),
		warehouses: memory.NewWarehouseRepository(s),
		stock:      memory.NewStockLevelRepository(s),
		movRepo:    memory.NewMovementRepository(s),
		events:     &recordingPublisher{},
		metrics:    &recordingMetrics{},
	}
	var runner appinv.TxRunner = memory.NewTxRunner(s)
	if o.wrap != nil {
		runner = o.wrap(runner)
	}
	l.lowStock = appinv.NewLowStockAggregator(l.stock, l.products, logger.Nop())
	l.engine = appinv.NewMovementUseCase(runner, l.movRepo, l.stock, l.products, l.warehouses,
		l.lowStock, l.events, l.metrics, logger.Nop(), o.cfg)
	l.queries = appinv.NewQueryUseCase(l.movRepo, l.stock, l.products, l.warehouses, l.lowStock, appinv.DefaultPageConfig())
	return l
}

func (l *ledger) addProduct(id string, threshold int64) error {
	p := &entity.Product{ID: id, SKU: "SKU-" + id, Name: "Producto " + id, UnitOfMeasure: "pcs", ReorderThreshold: threshold}
	if err := l.products.Create(context.Background(), p); err != nil {
		return err
	}
	return l.lowStock.Track(context.Background(), p)
}

func (l *ledger) addWarehouse(id string, active bool) error {
	return l.warehouses.Create(context.Background(), &entity.Warehouse{ID: id, Code: id, Name: "Bodega " + id, Active: active})
}

func (l *ledger) qty(productID, warehouseID string) int64 {
	lvl, _ := l.stock.Get(context.Background(), productID, warehouseID)
	return lvl.Quantity
}

func (l *ledger) create(typ entity.MovementType, lines ...entity.MovementLine) (*entity.Movement, error) {
	return l.engine.CreateMovement(context.Background(), appinv.MovementInput{Type: typ, Lines: lines, CreatedBy: "tester"})
}

// drive ejecuta las acciones en orden y se detiene en el primer error.
func (l *ledger) drive(id string, actions ...inventory.Action) (*entity.Movement, error) {
	var m *entity.Movement
	for _, a := range actions {
		var err error
		m, err = l.engine.Transition(context.Background(), id, a, "tester")
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

var fullPath = []inventory.Action{inventory.ActionSubmit, inventory.ActionConfirmAvailable, inventory.ActionCommit}

// receive crea y confirma una recepción de qty unidades.
func (l *ledger) receive(productID, warehouseID string, qty int64) (*entity.Movement, error) {
	m, err := l.create(entity.MovementTypeReceipt, entity.MovementLine{ProductID: productID, DestWarehouseID: warehouseID, Quantity: qty})
	if err != nil {
		return nil, err
	}
	return l.drive(m.ID, fullPath...)
}

func (l *ledger) status(id string) entity.MovementStatus {
	m, _ := l.movRepo.GetByID(context.Background(), id)
	if m == nil {
		return ""
	}
	return m.Status
}

// replay suma los deltas de todos los movimientos done (reversas incluidas) por llave.
func (l *ledger) replay() (map[inventory.StockKey]int64, error) {
	all, err := l.movRepo.List(context.Background(), repository.MovementFilter{Statuses: []entity.MovementStatus{entity.MovementStatusDone}}, nil, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[inventory.StockKey]int64)
	for _, m := range all {
		for _, d := range inventory.Deltas(m) {
			out[d.Key] += d.Delta
		}
	}
	return out, nil
}

// checkReplay compara el libro contra el replay de movimientos done.
func (l *ledger) checkReplay(products, warehouses []string) error {
	sums, err := l.replay()
	if err != nil {
		return err
	}
	for _, p := range products {
		for _, w := range warehouses {
			key := inventory.StockKey{ProductID: p, WarehouseID: w}
			if got := l.qty(p, w); got != sums[key] {
				return fmt.Errorf("libro %v = %d, replay = %d", key, got, sums[key])
			}
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// flakyRunner devuelve ErrConcurrencyConflict en las primeras `failures` llamadas.
type flakyRunner struct {
	inner    appinv.TxRunner
	failures int32
	calls    atomic.Int32
}

func (r *flakyRunner) Run(ctx context.Context, fn func(repository.MovementRepository, repository.StockLevelRepository) error) error {
	if r.calls.Add(1) <= r.failures {
		return domain.ErrConcurrencyConflict
	}
	return r.inner.Run(ctx, fn)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []appinv.MovementEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev appinv.MovementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingMetrics struct {
	retries     atomic.Int32
	transitions atomic.Int32
}

func (m *recordingMetrics) RecordTransition(context.Context, string, string, time.Duration) {
	m.transitions.Add(1)
}

func (m *recordingMetrics) RecordRetry(context.Context, string) { m.retries.Add(1) }
