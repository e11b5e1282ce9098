// Package memory implementa los puertos de persistencia en memoria. Sirve como backend
// del libro cuando LEDGER_STORAGE=memory y como sustrato de las pruebas del motor.
//
// El libro usa concurrencia optimista: cada fila de stock y cada movimiento lleva una
// versión; una transacción acumula sus escrituras y, al confirmar, valida bajo el candado
// del store que las versiones leídas sigan vigentes antes de aplicar todo de una vez
// (escritura condicional atómica sobre varias llaves).
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu          sync.RWMutex
	products    map[string]*entity.Product
	skus        map[string]string // sku -> product id
	warehouses  map[string]*entity.Warehouse
	codes       map[string]string // code -> warehouse id
	stock       map[inventory.StockKey]*entity.StockLevel
	byProduct   map[string]map[string]struct{} // product id -> bodegas con fila
	byWarehouse map[string]map[string]struct{} // warehouse id -> productos con fila
	movements   map[string]*entity.Movement
	now         func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]*entity.Product),
		skus:        make(map[string]string),
		warehouses:  make(map[string]*entity.Warehouse),
		codes:       make(map[string]string),
		stock:       make(map[inventory.StockKey]*entity.StockLevel),
		byProduct:   make(map[string]map[string]struct{}),
		byWarehouse: make(map[string]map[string]struct{}),
		movements:   make(map[string]*entity.Movement),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// stockRow devuelve una copia de la fila o una fila en cero con versión 0 si no existe.
// Requiere s.mu tomado.
func (s *Store) stockRow(key inventory.StockKey) entity.StockLevel {
	if row, ok := s.stock[key]; ok {
		return *row
	}
	return entity.StockLevel{ProductID: key.ProductID, WarehouseID: key.WarehouseID}
}

// putStock guarda la fila y la registra en los índices. Requiere s.mu tomado para escritura.
func (s *Store) putStock(row *entity.StockLevel) {
	key := inventory.StockKey{ProductID: row.ProductID, WarehouseID: row.WarehouseID}
	s.stock[key] = row
	addIndex(s.byProduct, key.ProductID, key.WarehouseID)
	addIndex(s.byWarehouse, key.WarehouseID, key.ProductID)
}

// deleteStock quita la fila y sus entradas de índice. Requiere s.mu tomado para escritura.
func (s *Store) deleteStock(key inventory.StockKey) {
	delete(s.stock, key)
	removeIndex(s.byProduct, key.ProductID, key.WarehouseID)
	removeIndex(s.byWarehouse, key.WarehouseID, key.ProductID)
}

// productRows copia las filas del producto. Requiere s.mu tomado.
func (s *Store) productRows(productID string) map[inventory.StockKey]entity.StockLevel {
	out := make(map[inventory.StockKey]entity.StockLevel, len(s.byProduct[productID]))
	for warehouseID := range s.byProduct[productID] {
		key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
		out[key] = *s.stock[key]
	}
	return out
}

// warehouseRows copia las filas de la bodega. Requiere s.mu tomado.
func (s *Store) warehouseRows(warehouseID string) map[inventory.StockKey]entity.StockLevel {
	out := make(map[inventory.StockKey]entity.StockLevel, len(s.byWarehouse[warehouseID]))
	for productID := range s.byWarehouse[warehouseID] {
		key := inventory.StockKey{ProductID: productID, WarehouseID: warehouseID}
		out[key] = *s.stock[key]
	}
	return out
}

func addIndex(idx map[string]map[string]struct{}, outer, inner string) {
	set, ok := idx[outer]
	if !ok {
		set = make(map[string]struct{})
		idx[outer] = set
	}
	set[inner] = struct{}{}
}

func removeIndex(idx map[string]map[string]struct{}, outer, inner string) {
	set, ok := idx[outer]
	if !ok {
		return
	}
	delete(set, inner)
	if len(set) == 0 {
		delete(idx, outer)
	}
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneWarehouse(w *entity.Warehouse) *entity.Warehouse {
	c := *w
	return &c
}
