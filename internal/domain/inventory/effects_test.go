package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func key(p, w string) inventory.StockKey { return inventory.StockKey{ProductID: p, WarehouseID: w} }

func TestDeltas_PorTipo(t *testing.T) {
	receipt := &entity.Movement{Type: entity.MovementTypeReceipt, Lines: []entity.MovementLine{
		{ProductID: "A", DestWarehouseID: "W1", Quantity: 50},
	}}
	assert.Equal(t, []inventory.Delta{{Key: key("A", "W1"), Delta: 50}}, inventory.Deltas(receipt))

	delivery := &entity.Movement{Type: entity.MovementTypeDelivery, Lines: []entity.MovementLine{
		{ProductID: "A", SourceWarehouseID: "W1", Quantity: 7},
	}}
	assert.Equal(t, []inventory.Delta{{Key: key("A", "W1"), Delta: -7}}, inventory.Deltas(delivery))

	transfer := &entity.Movement{Type: entity.MovementTypeTransfer, Lines: []entity.MovementLine{
		{ProductID: "A", SourceWarehouseID: "W1", DestWarehouseID: "W2", Quantity: 20},
	}}
	assert.Equal(t, []inventory.Delta{
		{Key: key("A", "W1"), Delta: -20},
		{Key: key("A", "W2"), Delta: 20},
	}, inventory.Deltas(transfer))
}

func TestDeltas_NetoPorLlaveYOrden(t *testing.T) {
	// W1 -> W2 y W2 -> W3 del mismo producto: W2 queda en neto cero y se omite.
	m := &entity.Movement{Type: entity.MovementTypeTransfer, Lines: []entity.MovementLine{
		{ProductID: "B", SourceWarehouseID: "W2", DestWarehouseID: "W3", Quantity: 4},
		{ProductID: "B", SourceWarehouseID: "W1", DestWarehouseID: "W2", Quantity: 4},
		{ProductID: "A", SourceWarehouseID: "W1", DestWarehouseID: "W3", Quantity: 1},
	}}
	assert.Equal(t, []inventory.Delta{
		{Key: key("A", "W1"), Delta: -1},
		{Key: key("A", "W3"), Delta: 1},
		{Key: key("B", "W1"), Delta: -4},
		{Key: key("B", "W3"), Delta: 4},
	}, inventory.Deltas(m))
}

func TestDeltas_ReversaEsInversa(t *testing.T) {
	orig := &entity.Movement{ID: "m1", Type: entity.MovementTypeTransfer, Lines: []entity.MovementLine{
		{ProductID: "A", SourceWarehouseID: "W1", DestWarehouseID: "W2", Quantity: 20},
	}}
	rev := orig.Clone()
	rev.ID = "r1"
	rev.ReversalOf = "m1"

	fwd := inventory.Deltas(orig)
	back := inventory.Deltas(rev)
	assert.Len(t, back, len(fwd))
	for i := range fwd {
		assert.Equal(t, fwd[i].Key, back[i].Key)
		assert.Equal(t, -fwd[i].Delta, back[i].Delta)
	}
}

func TestSourceRequirements_AgregaLineasDelMismoOrigen(t *testing.T) {
	m := &entity.Movement{Type: entity.MovementTypeDelivery, Lines: []entity.MovementLine{
		{ProductID: "A", SourceWarehouseID: "W1", Quantity: 30},
		{ProductID: "A", SourceWarehouseID: "W1", Quantity: 25},
	}}
	assert.Equal(t, []inventory.Delta{{Key: key("A", "W1"), Delta: 55}}, inventory.SourceRequirements(m))

	receipt := &entity.Movement{Type: entity.MovementTypeReceipt, Lines: []entity.MovementLine{
		{ProductID: "A", DestWarehouseID: "W1", Quantity: 30},
	}}
	assert.Nil(t, inventory.SourceRequirements(receipt))
}

func TestProductDeltas(t *testing.T) {
	d := []inventory.Delta{
		{Key: key("A", "W1"), Delta: -20},
		{Key: key("A", "W2"), Delta: 20},
		{Key: key("B", "W1"), Delta: 3},
	}
	assert.Equal(t, map[string]int64{"A": 0, "B": 3}, inventory.ProductDeltas(d))
}
