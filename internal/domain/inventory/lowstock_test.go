package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestLowStockIndex_PertenenciaYOrden(t *testing.T) {
	x := inventory.NewLowStockIndex()
	x.Reset(
		map[string]int64{"c": 10, "a": 10, "b": 5},
		map[string]int64{"a": 50, "b": 5},
	)
	// b: 5 <= 5 (en el umbral cuenta como bajo), c: sin stock = 0.
	assert.Equal(t, []string{"b", "c"}, x.List())
	assert.False(t, x.IsLow("a"))

	x.Set("a", 10)
	assert.Equal(t, []string{"a", "b", "c"}, x.List())

	x.Set("b", 6)
	x.Set("c", 11)
	assert.Equal(t, []string{"a"}, x.List())
	assert.Equal(t, 1, x.Count())
	assert.Equal(t, int64(11), x.Total("c"))
}

func TestLowStockIndex_TrackYForget(t *testing.T) {
	x := inventory.NewLowStockIndex()
	x.Track("p1", 10)
	assert.True(t, x.Tracked("p1"))
	assert.True(t, x.IsLow("p1"), "producto nuevo sin stock está bajo su punto de reorden")

	x.Set("p1", 40)
	assert.False(t, x.IsLow("p1"))

	// Subir el punto de reorden conserva el total.
	x.Track("p1", 40)
	assert.True(t, x.IsLow("p1"))

	x.Forget("p1")
	assert.False(t, x.Tracked("p1"))
	assert.Empty(t, x.List())
}

func TestLowStockIndex_ListEsCopia(t *testing.T) {
	x := inventory.NewLowStockIndex()
	x.Track("p1", 1)
	l := x.List()
	l[0] = "mutado"
	assert.Equal(t, []string{"p1"}, x.List())
}
