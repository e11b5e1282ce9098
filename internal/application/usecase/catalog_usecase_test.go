package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func newCatalog() (*usecase.ProductUseCase, *usecase.WarehouseUseCase, *inventory.LowStockAggregator, *memory.StockLevelRepo) {
	s := memory.NewStore()
	stock := memory.NewStockLevelRepository(s)
	products := memory.NewProductRepository(s)
	agg := inventory.NewLowStockAggregator(stock, products, logger.Nop())
	return usecase.NewProductUseCase(products, agg), usecase.NewWarehouseUseCase(memory.NewWarehouseRepository(s)), agg, stock
}

func ptr[T any](v T) *T { return &v }

func TestProductUseCase_CreateNormalizaYRegistraEnIndice(t *testing.T) {
	ctx := context.Background()
	products, _, agg, _ := newCatalog()

	p, err := products.Create(ctx, dto.CreateProductRequest{SKU: " tor 3/8 ", Name: "Tornillo"})
	require.NoError(t, err)
	assert.Equal(t, "TOR-3/8", p.SKU)
	assert.Equal(t, int64(10), p.ReorderThreshold, "punto de reorden por defecto")
	assert.Equal(t, "pcs", p.UnitOfMeasure)
	assert.True(t, p.LowStock)
	assert.Equal(t, []string{p.ID}, agg.ListLowStock())

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "TOR 3/8", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "Y", ReorderThreshold: ptr(int64(-1))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "  ", Name: "Y"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProductUseCase_UpdateCambiaUmbralEnIndice(t *testing.T) {
	ctx := context.Background()
	products, _, agg, stock := newCatalog()
	p, err := products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", ReorderThreshold: ptr(int64(5))})
	require.NoError(t, err)

	_, err = stock.ApplyDelta(ctx, p.ID, "W1", 8)
	require.NoError(t, err)
	require.NoError(t, agg.Refresh(ctx, p.ID))
	assert.False(t, agg.IsLowStock(p.ID))

	upd, err := products.Update(ctx, p.ID, dto.UpdateProductRequest{ReorderThreshold: ptr(int64(8))})
	require.NoError(t, err)
	assert.True(t, upd.LowStock, "8 <= 8")
	assert.Equal(t, int64(8), upd.TotalStock)
	assert.Equal(t, "A", upd.SKU)

	missing, err := products.Update(ctx, "nope", dto.UpdateProductRequest{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductUseCase_DeleteConStockFalla(t *testing.T) {
	ctx := context.Background()
	products, _, agg, stock := newCatalog()
	p, err := products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)
	_, err = stock.ApplyDelta(ctx, p.ID, "W1", 1)
	require.NoError(t, err)

	assert.ErrorIs(t, products.Delete(ctx, p.ID), domain.ErrConflict)
	assert.True(t, agg.IsLowStock(p.ID), "sigue en el índice")

	_, err = stock.ApplyDelta(ctx, p.ID, "W1", -1)
	require.NoError(t, err)
	require.NoError(t, products.Delete(ctx, p.ID))
	assert.Empty(t, agg.ListLowStock())

	list, err := products.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Zero(t, list.Page.Total)
}

func TestWarehouseUseCase_CodigoYDesactivacion(t *testing.T) {
	ctx := context.Background()
	_, warehouses, _, _ := newCatalog()

	w, err := warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "bod norte", Name: "Bodega Norte"})
	require.NoError(t, err)
	assert.Equal(t, "BOD-NORTE", w.Code)
	assert.True(t, w.Active)

	_, err = warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "BOD-NORTE", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	upd, err := warehouses.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, upd.Active)

	_, err = warehouses.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Name: ptr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
