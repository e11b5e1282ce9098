package inventory

import (
	"cmp"
	"math"
	"slices"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockKey identifica una fila del libro.
type StockKey struct {
	ProductID   string
	WarehouseID string
}

func compareKeys(a, b StockKey) int {
	if c := cmp.Compare(a.ProductID, b.ProductID); c != 0 {
		return c
	}
	return cmp.Compare(a.WarehouseID, b.WarehouseID)
}

// AddTotal suma cantidades no negativas saturando en math.MaxInt64. Cada fila cabe en int64
// pero el total de un producto sobre varias bodegas puede no caber.
func AddTotal(total, qty int64) int64 {
	if qty > 0 && total > math.MaxInt64-qty {
		return math.MaxInt64
	}
	return total + qty
}

// Delta cambio firmado de cantidad sobre una fila del libro.
type Delta struct {
	Key   StockKey
	Delta int64
}

// Deltas calcula el efecto neto del movimiento por fila, ordenado por llave:
// receipt suma en destino, delivery resta en origen, transfer resta en origen y suma en destino.
// Una reversa produce exactamente los deltas inversos. Las llaves con neto cero se omiten.
// Con líneas aceptadas por ValidateLines ningún neto desborda int64.
func Deltas(m *entity.Movement) []Delta {
	sign := int64(1)
	if m.IsReversal() {
		sign = -1
	}
	net := make(map[StockKey]int64)
	for _, l := range m.Lines {
		switch m.Type {
		case entity.MovementTypeReceipt:
			net[StockKey{l.ProductID, l.DestWarehouseID}] += sign * l.Quantity
		case entity.MovementTypeDelivery:
			net[StockKey{l.ProductID, l.SourceWarehouseID}] -= sign * l.Quantity
		case entity.MovementTypeTransfer:
			net[StockKey{l.ProductID, l.SourceWarehouseID}] -= sign * l.Quantity
			net[StockKey{l.ProductID, l.DestWarehouseID}] += sign * l.Quantity
		}
	}
	out := make([]Delta, 0, len(net))
	for k, d := range net {
		if d != 0 {
			out = append(out, Delta{Key: k, Delta: d})
		}
	}
	slices.SortFunc(out, func(a, b Delta) int { return compareKeys(a.Key, b.Key) })
	return out
}

// SourceRequirements suma la cantidad solicitada por (producto, bodega origen) para
// delivery y transfer. Receipt no tiene origen y devuelve nil.
func SourceRequirements(m *entity.Movement) []Delta {
	if m.Type == entity.MovementTypeReceipt {
		return nil
	}
	req := make(map[StockKey]int64)
	for _, l := range m.Lines {
		req[StockKey{l.ProductID, l.SourceWarehouseID}] += l.Quantity
	}
	out := make([]Delta, 0, len(req))
	for k, q := range req {
		out = append(out, Delta{Key: k, Delta: q})
	}
	slices.SortFunc(out, func(a, b Delta) int { return compareKeys(a.Key, b.Key) })
	return out
}

// ProductDeltas agrupa los deltas por producto (entrada del agregador de bajo stock).
func ProductDeltas(deltas []Delta) map[string]int64 {
	out := make(map[string]int64, len(deltas))
	for _, d := range deltas {
		out[d.Key.ProductID] += d.Delta
	}
	return out
}
