package entity

import "time"

// Product representa un producto o SKU del catálogo.
// El stock no vive aquí: se lleva por bodega en StockLevel y se agrega en el índice de bajo stock.
type Product struct {
	ID               string
	SKU              string // único y normalizado; inmutable tras la creación
	Name             string
	CategoryID       string // opcional
	UnitOfMeasure    string // kg, pcs, litros...
	ReorderThreshold int64  // punto de reorden (>= 0)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
