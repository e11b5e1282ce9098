package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Code    string `json:"code" validate:"required,min=1,max=50"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
	Active  *bool  `json:"active"` // nil = activa
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Code    *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
	Active  *bool   `json:"active"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
