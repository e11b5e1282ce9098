package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo libro de stock en memoria. Con tx != nil las escrituras quedan pendientes
// hasta la confirmación de la transacción.
type StockLevelRepo struct {
	store *Store
	tx    *Tx
}

// NewStockLevelRepository construye el repositorio fuera de transacción (solo lectura en la práctica).
func NewStockLevelRepository(s *Store) *StockLevelRepo {
	return &StockLevelRepo{store: s}
}

func (r *StockLevelRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if r.tx != nil {
		if q, ok := r.tx.pending[key]; ok {
			return &entity.StockLevel{ProductID: productID, WarehouseID: warehouseID, Quantity: q, Version: r.tx.reads[key]}, nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	row := r.store.stockRow(key)
	return &row, nil
}

// ApplyDelta fuera de transacción se confirma de inmediato como una tx de una sola llave.
func (r *StockLevelRepo) ApplyDelta(_ context.Context, productID, warehouseID string, delta int64) (int64, error) {
	key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if r.tx != nil {
		return r.tx.applyDelta(key, delta)
	}
	tx := newTx(r.store)
	q, err := tx.applyDelta(key, delta)
	if err != nil {
		return 0, err
	}
	if err := tx.commit(); err != nil {
		return 0, err
	}
	return q, nil
}

func (r *StockLevelRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.StockLevel, error) {
	r.store.mu.RLock()
	rows := r.store.warehouseRows(warehouseID)
	r.store.mu.RUnlock()
	return r.merge(rows, func(k inventory.StockKey) bool { return k.WarehouseID == warehouseID }), nil
}

// ListByProduct recorre solo las filas del producto vía el índice del store.
func (r *StockLevelRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockLevel, error) {
	r.store.mu.RLock()
	rows := r.store.productRows(productID)
	r.store.mu.RUnlock()
	return r.merge(rows, func(k inventory.StockKey) bool { return k.ProductID == productID }), nil
}

func (r *StockLevelRepo) TotalByProduct(ctx context.Context, productID string) (int64, error) {
	rows, _ := r.ListByProduct(ctx, productID)
	var total int64
	for _, row := range rows {
		total = inventory.AddTotal(total, row.Quantity)
	}
	return total, nil
}

func (r *StockLevelRepo) Totals(_ context.Context) (map[string]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make(map[string]int64, len(r.store.byProduct))
	for key, row := range r.store.stock {
		out[key.ProductID] = inventory.AddTotal(out[key.ProductID], row.Quantity)
	}
	return out, nil
}

// merge superpone a rows las escrituras pendientes de la tx que cumplen match.
// Orden: producto y bodega ascendentes.
func (r *StockLevelRepo) merge(rows map[inventory.StockKey]entity.StockLevel, match func(inventory.StockKey) bool) []*entity.StockLevel {
	if r.tx != nil {
		for key, q := range r.tx.pending {
			if match(key) {
				row := rows[key]
				row.ProductID, row.WarehouseID, row.Quantity = key.ProductID, key.WarehouseID, q
				rows[key] = row
			}
		}
	}

	out := make([]*entity.StockLevel, 0, len(rows))
	for _, row := range rows {
		out = append(out, &row)
	}
	slices.SortFunc(out, func(a, b *entity.StockLevel) int {
		if c := strings.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return strings.Compare(a.WarehouseID, b.WarehouseID)
	})
	return out
}
