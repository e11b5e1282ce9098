package inventory

import (
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ValidateLines valida la forma de las líneas según el tipo de movimiento y las renumera
// (LineNo 1..n). No consulta el catálogo: la existencia de productos y bodegas la verifica
// el caso de uso. La suma de cantidades por producto y bodega, tanto en origen como en
// destino, debe caber en int64.
func ValidateLines(movementType entity.MovementType, lines []entity.MovementLine) error {
	if !movementType.Valid() {
		return domain.Validationf("tipo de movimiento desconocido %q", movementType)
	}
	if len(lines) == 0 {
		return domain.Validationf("el movimiento requiere al menos una línea")
	}
	sources := make(map[StockKey]int64)
	dests := make(map[StockKey]int64)
	for i := range lines {
		l := &lines[i]
		l.LineNo = i + 1
		if l.ProductID == "" {
			return domain.Validationf("línea %d: product_id es requerido", l.LineNo)
		}
		if l.Quantity <= 0 {
			return domain.Validationf("línea %d: la cantidad debe ser positiva", l.LineNo)
		}
		switch movementType {
		case entity.MovementTypeReceipt:
			if l.DestWarehouseID == "" || l.SourceWarehouseID != "" {
				return domain.Validationf("línea %d: una recepción solo lleva bodega destino", l.LineNo)
			}
		case entity.MovementTypeDelivery:
			if l.SourceWarehouseID == "" || l.DestWarehouseID != "" {
				return domain.Validationf("línea %d: una entrega solo lleva bodega origen", l.LineNo)
			}
		case entity.MovementTypeTransfer:
			if l.SourceWarehouseID == "" || l.DestWarehouseID == "" {
				return domain.Validationf("línea %d: un traslado requiere bodega origen y destino", l.LineNo)
			}
			if l.SourceWarehouseID == l.DestWarehouseID {
				return domain.Validationf("línea %d: origen y destino deben ser distintos", l.LineNo)
			}
		}
		if l.SourceWarehouseID != "" {
			if err := accumulate(sources, StockKey{ProductID: l.ProductID, WarehouseID: l.SourceWarehouseID}, l); err != nil {
				return err
			}
		}
		if l.DestWarehouseID != "" {
			if err := accumulate(dests, StockKey{ProductID: l.ProductID, WarehouseID: l.DestWarehouseID}, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func accumulate(sums map[StockKey]int64, key StockKey, l *entity.MovementLine) error {
	if sums[key] > math.MaxInt64-l.Quantity {
		return domain.Validationf("línea %d: la cantidad acumulada de %s en %s excede el máximo", l.LineNo, key.ProductID, key.WarehouseID)
	}
	sums[key] += l.Quantity
	return nil
}

// WarehouseIDs devuelve las bodegas referenciadas por las líneas, sin repetir, en orden de aparición.
func WarehouseIDs(lines []entity.MovementLine) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, l := range lines {
		add(l.SourceWarehouseID)
		add(l.DestWarehouseID)
	}
	return ids
}

// ProductIDs devuelve los productos referenciados por las líneas, sin repetir.
func ProductIDs(lines []entity.MovementLine) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
