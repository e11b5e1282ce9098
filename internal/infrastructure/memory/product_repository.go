package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el repositorio.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{store: s}
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.skus[p.SKU]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	s.products[p.ID] = cloneProduct(p)
	s.skus[p.SKU] = p.ID
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if p, ok := r.store.products[id]; ok {
		return cloneProduct(p), nil
	}
	return nil, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	r.store.mu.RLock()
	id, ok := r.store.skus[sku]
	r.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	upd := cloneProduct(p)
	upd.SKU = cur.SKU
	upd.CreatedAt = cur.CreatedAt
	s.products[p.ID] = upd
	return nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	all, _ := r.ListAll(ctx)
	if offset >= len(all) {
		return []*entity.Product{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ListAll ordenado por nombre y luego ID.
func (r *ProductRepo) ListAll(_ context.Context) ([]*entity.Product, error) {
	r.store.mu.RLock()
	out := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, cloneProduct(p))
	}
	r.store.mu.RUnlock()
	slices.SortFunc(out, func(a, b *entity.Product) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *ProductRepo) Count(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.products), nil
}

// Delete elimina el producto y sus filas de stock en cero. Falla con ErrConflict si
// alguna línea de movimiento lo referencia o si tiene stock distinto de cero.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.productReferenced(id) {
		return domain.ErrConflict
	}
	rows := s.productRows(id)
	for _, row := range rows {
		if row.Quantity != 0 {
			return domain.ErrConflict
		}
	}
	for key := range rows {
		s.deleteStock(key)
	}
	delete(s.skus, p.SKU)
	delete(s.products, id)
	return nil
}
