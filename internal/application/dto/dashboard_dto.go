package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Contadores del tablero principal más los últimos movimientos registrados.
type DashboardSummaryDTO struct {
	TotalProducts     int `json:"total_products"`
	LowStockProducts  int `json:"low_stock_products"`
	TotalWarehouses   int `json:"total_warehouses"`
	PendingReceipts   int `json:"pending_receipts"`   // draft + waiting
	PendingDeliveries int `json:"pending_deliveries"` // draft + waiting + ready
	PendingTransfers  int `json:"pending_transfers"`  // draft + waiting + ready

	RecentMovements []MovementResponse `json:"recent_movements"` // 5 más recientes

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}
