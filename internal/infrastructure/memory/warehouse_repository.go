package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	store *Store
}

// NewWarehouseRepository construye el repositorio.
func NewWarehouseRepository(s *Store) *WarehouseRepo {
	return &WarehouseRepo{store: s}
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[w.Code]; ok {
		return domain.ErrDuplicate
	}
	s.warehouses[w.ID] = cloneWarehouse(w)
	s.codes[w.Code] = w.ID
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if w, ok := r.store.warehouses[id]; ok {
		return cloneWarehouse(w), nil
	}
	return nil, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.warehouses[w.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if w.Code != cur.Code {
		if other, taken := s.codes[w.Code]; taken && other != w.ID {
			return domain.ErrDuplicate
		}
		delete(s.codes, cur.Code)
		s.codes[w.Code] = w.ID
	}
	upd := cloneWarehouse(w)
	upd.CreatedAt = cur.CreatedAt
	s.warehouses[w.ID] = upd
	return nil
}

// List ordenado por código.
func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.store.mu.RLock()
	out := make([]*entity.Warehouse, 0, len(r.store.warehouses))
	for _, w := range r.store.warehouses {
		out = append(out, cloneWarehouse(w))
	}
	r.store.mu.RUnlock()
	slices.SortFunc(out, func(a, b *entity.Warehouse) int { return strings.Compare(a.Code, b.Code) })
	if offset >= len(out) {
		return []*entity.Warehouse{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
