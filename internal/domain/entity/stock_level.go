package entity

import "time"

// StockLevel representa la cantidad disponible de un producto en una bodega.
// Es la suma de los efectos de todos los movimientos en estado done sobre ese par.
type StockLevel struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Version     int64 // token de concurrencia optimista
	UpdatedAt   time.Time
}
