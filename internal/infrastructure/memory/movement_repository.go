package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos en memoria; dentro de una Tx las altas y actualizaciones se
// validan contra la versión almacenada al confirmar.
type MovementRepo struct {
	store *Store
	tx    *Tx
}

// NewMovementRepository construye el repositorio fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{store: s}
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	if r.tx != nil {
		return r.tx.createMovement(m)
	}
	tx := newTx(r.store)
	if err := tx.createMovement(m); err != nil {
		return err
	}
	return tx.commit()
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	if r.tx != nil {
		return r.tx.movement(id), nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if m, ok := r.store.movements[id]; ok {
		return m.Clone(), nil
	}
	return nil, nil
}

func (r *MovementRepo) Update(_ context.Context, m *entity.Movement, expectedVersion int64) error {
	if r.tx != nil {
		return r.tx.updateMovement(m, expectedVersion)
	}
	tx := newTx(r.store)
	if err := tx.updateMovement(m, expectedVersion); err != nil {
		return err
	}
	return tx.commit()
}

func (r *MovementRepo) CountByTypeAndStatus(_ context.Context, movementType entity.MovementType, statuses []entity.MovementStatus) (int, error) {
	f := repository.MovementFilter{Type: movementType, Statuses: statuses}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := 0
	for _, m := range r.store.movements {
		if matches(m, f) {
			n++
		}
	}
	return n, nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter, after *repository.MovementCursor, limit int) ([]*entity.Movement, error) {
	r.store.mu.RLock()
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if !matches(m, f) {
			continue
		}
		if after != nil && !before(m, after) {
			continue
		}
		out = append(out, m.Clone())
	}
	r.store.mu.RUnlock()

	slices.SortFunc(out, func(a, b *entity.Movement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MovementRepo) IsProductReferenced(_ context.Context, productID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.productReferenced(productID), nil
}

// productReferenced requiere s.mu tomado.
func (s *Store) productReferenced(productID string) bool {
	for _, m := range s.movements {
		for _, l := range m.Lines {
			if l.ProductID == productID {
				return true
			}
		}
	}
	return false
}

// before indica si m va después del cursor en orden (created_at DESC, id DESC).
func before(m *entity.Movement, c *repository.MovementCursor) bool {
	if !m.CreatedAt.Equal(c.CreatedAt) {
		return m.CreatedAt.Before(c.CreatedAt)
	}
	return m.ID < c.ID
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, m.Status) {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.CreatedAt.Before(*f.To) {
		return false
	}
	if f.ProductID == "" && f.WarehouseID == "" {
		return true
	}
	for _, l := range m.Lines {
		if f.ProductID != "" && l.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && l.SourceWarehouseID != f.WarehouseID && l.DestWarehouseID != f.WarehouseID {
			continue
		}
		return true
	}
	return false
}
