package dto

import "time"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU              string `json:"sku" validate:"required,min=1,max=100"`
	Name             string `json:"name" validate:"required,min=1,max=200"`
	CategoryID       string `json:"category_id"`
	UnitOfMeasure    string `json:"unit_of_measure"`
	ReorderThreshold *int64 `json:"reorder_threshold"` // nil = 10
}

// UpdateProductRequest entrada para actualizar un producto. El SKU es inmutable.
type UpdateProductRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID       *string `json:"category_id"`
	UnitOfMeasure    *string `json:"unit_of_measure"`
	ReorderThreshold *int64  `json:"reorder_threshold"`
}

// ProductResponse salida de un producto, con el total actual y la marca de bajo stock.
type ProductResponse struct {
	ID               string    `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	CategoryID       string    `json:"category_id,omitempty"`
	UnitOfMeasure    string    `json:"unit_of_measure"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	TotalStock       int64     `json:"total_stock"`
	LowStock         bool      `json:"low_stock"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
