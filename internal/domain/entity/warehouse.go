package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// Una bodega inactiva rechaza movimientos nuevos pero conserva su stock histórico.
type Warehouse struct {
	ID        string
	Code      string // único y normalizado
	Name      string
	Active    bool
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
