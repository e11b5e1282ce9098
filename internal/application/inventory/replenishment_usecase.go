package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición a partir del índice de bajo stock.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	lowStock    *LowStockAggregator
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, lowStock *LowStockAggregator) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, lowStock: lowStock}
}

// GenerateReplenishmentList devuelve los productos en o bajo su punto de reorden con la
// cantidad sugerida de pedido. Stock ideal = ceil(punto de reorden * 1.5); cobertura =
// stock / punto de reorden * 100. Orden: menor cobertura primero, luego ID.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	ids := uc.lowStock.ListLowStock()
	if len(ids) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	hundred := decimal.NewFromInt(100)

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(ids))
	for _, id := range ids {
		p, err := uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			// Borrado entre la lectura del índice y esta consulta.
			continue
		}
		current := uc.lowStock.Total(id)
		reorder := decimal.NewFromInt(p.ReorderThreshold)

		ideal := reorder.Mul(factor).Ceil().IntPart()
		suggested := ideal - current
		if suggested < 0 {
			suggested = 0
		}
		coverage := decimal.Zero
		if p.ReorderThreshold > 0 {
			coverage = decimal.NewFromInt(current).Div(reorder).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			UnitOfMeasure:     p.UnitOfMeasure,
			CurrentStock:      current,
			ReorderPoint:      p.ReorderThreshold,
			IdealStock:        ideal,
			SuggestedOrderQty: suggested,
			CoveragePct:       coverage,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.CoveragePct.Equal(b.CoveragePct) {
			return a.CoveragePct.LessThan(b.CoveragePct)
		}
		return a.ProductID < b.ProductID
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
