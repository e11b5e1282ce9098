package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockLevelRepository define el puerto del libro de stock por producto+bodega.
// ApplyDelta solo se invoca dentro de la transacción de commit del motor (TxRunner).
type StockLevelRepository interface {
	// Get devuelve el nivel actual; si no existe fila devuelve cantidad 0.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// ApplyDelta suma delta a la cantidad y devuelve la nueva cantidad.
	// Falla con *domain.StockError (ErrNegativeStock) si el resultado sería negativo.
	ApplyDelta(ctx context.Context, productID, warehouseID string, delta int64) (int64, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockLevel, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLevel, error)
	// TotalByProduct suma la cantidad del producto en todas las bodegas.
	TotalByProduct(ctx context.Context, productID string) (int64, error)
	// Totals recalcula el total por producto sobre todo el libro (reconstrucción completa).
	Totals(ctx context.Context) (map[string]int64, error)
}
