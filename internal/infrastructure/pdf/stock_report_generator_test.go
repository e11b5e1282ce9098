package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestFormatThousands(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1.000", 25000: "25.000", 1000000: "1.000.000", -1500: "-1.500"}
	for in, want := range cases {
		assert.Equal(t, want, formatThousands(in))
	}
}

func TestGenerateStockReport_DevuelvePDF(t *testing.T) {
	report := &inventory.StockReport{
		Warehouse: &entity.Warehouse{ID: "W1", Code: "BOD-1", Name: "Bodega Central", Address: "Calle 1"},
		Lines: []inventory.StockReportLine{
			{ProductID: "A", SKU: "SKU-A", Name: "Tornillo", UnitOfMeasure: "pcs", Quantity: 1200, ReorderThreshold: 100},
			{ProductID: "B", SKU: "SKU-B", Name: "Tuerca", UnitOfMeasure: "pcs", Quantity: 5, ReorderThreshold: 10, LowStock: true},
		},
		TotalUnits:  1205,
		GeneratedAt: time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
	}
	out, err := NewMarotoReportGenerator().GenerateStockReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateStockReport_SinLineas(t *testing.T) {
	report := &inventory.StockReport{
		Warehouse:   &entity.Warehouse{ID: "W2", Code: "BOD-2", Name: "Vacía"},
		GeneratedAt: time.Now(),
	}
	out, err := NewMarotoReportGenerator().GenerateStockReport(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
