package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest línea de un movimiento en el body de creación o edición.
type MovementLineRequest struct {
	ProductID         string `json:"product_id"`
	SourceWarehouseID string `json:"source_warehouse_id,omitempty"`
	DestWarehouseID   string `json:"dest_warehouse_id,omitempty"`
	Quantity          int64  `json:"quantity"`
}

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	Type      string                `json:"type"` // receipt | delivery | transfer
	Reference string                `json:"reference,omitempty"`
	Lines     []MovementLineRequest `json:"lines"`
}

// UpdateLinesRequest body para PUT /api/movements/:id/lines.
type UpdateLinesRequest struct {
	Lines []MovementLineRequest `json:"lines"`
}

// MovementLineResponse línea en la salida.
type MovementLineResponse struct {
	LineNo            int    `json:"line_no"`
	ProductID         string `json:"product_id"`
	SourceWarehouseID string `json:"source_warehouse_id,omitempty"`
	DestWarehouseID   string `json:"dest_warehouse_id,omitempty"`
	Quantity          int64  `json:"quantity"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Status      string                 `json:"status"`
	Reference   string                 `json:"reference,omitempty"`
	Lines       []MovementLineResponse `json:"lines"`
	Version     int64                  `json:"version"`
	IsReversal  bool                   `json:"is_reversal"`
	ReversalOf  string                 `json:"reversal_of,omitempty"`
	ReversedBy  string                 `json:"reversed_by,omitempty"`
	CreatedBy   string                 `json:"created_by,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	DoneAt      *time.Time             `json:"done_at,omitempty"`
	CancelledAt *time.Time             `json:"cancelled_at,omitempty"`
}

// MovementPageResponse página del historial. NextCursor vacío = última página.
type MovementPageResponse struct {
	Items      []MovementResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// CountResponse respuesta de GET /api/movements/count.
type CountResponse struct {
	Count int `json:"count"`
}

// StockLevelResponse cantidad de un producto en una bodega.
type StockLevelResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}

// WarehouseStockResponse stock de una bodega (solo filas distintas de cero).
type WarehouseStockResponse struct {
	WarehouseID string               `json:"warehouse_id"`
	Items       []StockLevelResponse `json:"items"`
}

// LowStockResponse productos en o bajo su punto de reorden, ordenados por ID.
type LowStockResponse struct {
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un SKU
// que se encuentra en o por debajo de su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	CurrentStock      int64           `json:"current_stock"`
	ReorderPoint      int64           `json:"reorder_point"`
	IdealStock        int64           `json:"ideal_stock"`         // ceil(ReorderPoint * 1.5)
	SuggestedOrderQty int64           `json:"suggested_order_qty"` // IdealStock - CurrentStock
	CoveragePct       decimal.Decimal `json:"coverage_pct"`        // CurrentStock / ReorderPoint * 100
	Priority          int             `json:"priority"`            // 1 = más urgente
}
