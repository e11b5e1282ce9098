package memory

import (
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// movementWrite escritura pendiente de un movimiento; base es la versión almacenada sobre la
// que se calculó (-1 para altas).
type movementWrite struct {
	m    *entity.Movement
	base int64
}

// Tx unidad de trabajo optimista sobre el Store.
type Tx struct {
	store     *Store
	reads     map[inventory.StockKey]int64 // versión observada por ApplyDelta
	pending   map[inventory.StockKey]int64 // cantidad resultante
	movements map[string]movementWrite
}

func newTx(s *Store) *Tx {
	return &Tx{
		store:     s,
		reads:     make(map[inventory.StockKey]int64),
		pending:   make(map[inventory.StockKey]int64),
		movements: make(map[string]movementWrite),
	}
}

// quantity devuelve la cantidad vista por la tx (pendiente o almacenada).
func (tx *Tx) quantity(key inventory.StockKey) (qty, version int64, seen bool) {
	if q, ok := tx.pending[key]; ok {
		return q, tx.reads[key], true
	}
	tx.store.mu.RLock()
	row := tx.store.stockRow(key)
	tx.store.mu.RUnlock()
	return row.Quantity, row.Version, false
}

func (tx *Tx) applyDelta(key inventory.StockKey, delta int64) (int64, error) {
	cur, version, seen := tx.quantity(key)
	if !seen {
		tx.reads[key] = version
	}
	if delta > 0 && cur > math.MaxInt64-delta {
		return 0, domain.Validationf("stock de %s en %s excede el máximo", key.ProductID, key.WarehouseID)
	}
	next := cur + delta
	if next < 0 {
		return 0, &domain.StockError{
			Err:         domain.ErrNegativeStock,
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			Requested:   -delta,
			Available:   cur,
		}
	}
	tx.pending[key] = next
	return next, nil
}

func (tx *Tx) movement(id string) *entity.Movement {
	if w, ok := tx.movements[id]; ok {
		return w.m.Clone()
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	if m, ok := tx.store.movements[id]; ok {
		return m.Clone()
	}
	return nil
}

func (tx *Tx) createMovement(m *entity.Movement) error {
	if tx.movement(m.ID) != nil {
		return domain.ErrDuplicate
	}
	m.Version = 1
	tx.movements[m.ID] = movementWrite{m: m.Clone(), base: -1}
	return nil
}

func (tx *Tx) updateMovement(m *entity.Movement, expected int64) error {
	cur := tx.movement(m.ID)
	if cur == nil {
		return domain.ErrNotFound
	}
	if cur.Version != expected {
		return domain.ErrConcurrencyConflict
	}
	base := expected
	if w, ok := tx.movements[m.ID]; ok {
		base = w.base
	}
	m.Version = expected + 1
	tx.movements[m.ID] = movementWrite{m: m.Clone(), base: base}
	return nil
}

// commit valida las versiones leídas y aplica todas las escrituras bajo el candado del store.
// Si otra transacción confirmó antes sobre alguna llave o movimiento tocado, no aplica nada
// y devuelve domain.ErrConcurrencyConflict.
func (tx *Tx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, v := range tx.reads {
		if s.stockRow(key).Version != v {
			return domain.ErrConcurrencyConflict
		}
	}
	for id, w := range tx.movements {
		stored, exists := s.movements[id]
		switch {
		case w.base < 0 && exists:
			return domain.ErrConcurrencyConflict
		case w.base >= 0 && (!exists || stored.Version != w.base):
			return domain.ErrConcurrencyConflict
		}
	}

	now := s.now()
	for key, qty := range tx.pending {
		row := s.stockRow(key)
		row.Quantity = qty
		row.Version++
		row.UpdatedAt = now
		s.putStock(&row)
	}
	for id, w := range tx.movements {
		s.movements[id] = w.m
	}
	return nil
}
