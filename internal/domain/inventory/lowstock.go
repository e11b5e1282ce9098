package inventory

import (
	"slices"
	"sync"
)

// LowStockIndex vista derivada de bajo stock: por producto guarda el total en todas las
// bodegas y su punto de reorden, y mantiene ordenado (por ID ascendente) el conjunto de
// productos con total <= punto de reorden. Cada actualización toca un solo producto;
// List es proporcional al tamaño del conjunto, no al catálogo.
type LowStockIndex struct {
	mu         sync.RWMutex
	totals     map[string]int64
	thresholds map[string]int64
	low        map[string]struct{}
	sorted     []string
}

// NewLowStockIndex construye un índice vacío.
func NewLowStockIndex() *LowStockIndex {
	return &LowStockIndex{
		totals:     make(map[string]int64),
		thresholds: make(map[string]int64),
		low:        make(map[string]struct{}),
	}
}

// Reset reemplaza el contenido completo (reconstrucción desde el libro).
// Los productos sin total se consideran en 0.
func (x *LowStockIndex) Reset(thresholds, totals map[string]int64) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.totals = make(map[string]int64, len(thresholds))
	x.thresholds = make(map[string]int64, len(thresholds))
	x.low = make(map[string]struct{})
	x.sorted = x.sorted[:0]
	for id, th := range thresholds {
		x.thresholds[id] = th
		x.totals[id] = totals[id]
		if totals[id] <= th {
			x.low[id] = struct{}{}
			x.sorted = append(x.sorted, id)
		}
	}
	slices.Sort(x.sorted)
}

// Track registra o actualiza el punto de reorden de un producto conservando su total.
func (x *LowStockIndex) Track(productID string, threshold int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.thresholds[productID] = threshold
	if _, ok := x.totals[productID]; !ok {
		x.totals[productID] = 0
	}
	x.refresh(productID)
}

// Forget elimina el producto del índice (producto borrado del catálogo).
func (x *LowStockIndex) Forget(productID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.thresholds, productID)
	delete(x.totals, productID)
	x.setLow(productID, false)
}

// Tracked indica si el producto tiene punto de reorden registrado.
func (x *LowStockIndex) Tracked(productID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.thresholds[productID]
	return ok
}

// Set fija el total recalculado de un producto y actualiza su pertenencia.
func (x *LowStockIndex) Set(productID string, total int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.totals[productID] = total
	x.refresh(productID)
}

// Total devuelve el total conocido del producto.
func (x *LowStockIndex) Total(productID string) int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.totals[productID]
}

// IsLow indica si el producto está en o bajo su punto de reorden.
func (x *LowStockIndex) IsLow(productID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.low[productID]
	return ok
}

// List devuelve una copia del conjunto de bajo stock ordenado por ID ascendente.
func (x *LowStockIndex) List() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.sorted)
}

// Count tamaño del conjunto de bajo stock.
func (x *LowStockIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.sorted)
}

// refresh requiere x.mu tomado en escritura.
func (x *LowStockIndex) refresh(productID string) {
	th, tracked := x.thresholds[productID]
	x.setLow(productID, tracked && x.totals[productID] <= th)
}

func (x *LowStockIndex) setLow(productID string, low bool) {
	_, isLow := x.low[productID]
	if low == isLow {
		return
	}
	i, found := slices.BinarySearch(x.sorted, productID)
	if low {
		x.low[productID] = struct{}{}
		if !found {
			x.sorted = slices.Insert(x.sorted, i, productID)
		}
		return
	}
	delete(x.low, productID)
	if found {
		x.sorted = slices.Delete(x.sorted, i, i+1)
	}
}
