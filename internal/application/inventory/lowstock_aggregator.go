package inventory

import (
	"context"
	"errors"
	"hash/maphash"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const lowStockStripes = 64

// LowStockAggregator mantiene el índice de bajo stock a partir del libro. Tras cada commit
// confirmado recalcula solo el total de los productos afectados; Rebuild recalcula todo
// desde cero (arranque y oráculo de pruebas).
//
// Las actualizaciones de un mismo producto se serializan con un candado por franja: la
// lectura del total ocurre bajo el candado, así la última actualización aplicada siempre
// refleja un estado del libro igual o posterior al de las anteriores.
type LowStockAggregator struct {
	stockRepo   repository.StockLevelRepository
	productRepo repository.ProductRepository
	index       *inventory.LowStockIndex
	seed        maphash.Seed
	stripes     [lowStockStripes]sync.Mutex
	log         *logger.Logger
}

// NewLowStockAggregator construye el agregador con un índice vacío; llamar Rebuild al arrancar.
func NewLowStockAggregator(stockRepo repository.StockLevelRepository, productRepo repository.ProductRepository, log *logger.Logger) *LowStockAggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &LowStockAggregator{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		index:       inventory.NewLowStockIndex(),
		seed:        maphash.MakeSeed(),
		log:         log.Component("lowstock"),
	}
}

func (a *LowStockAggregator) stripe(productID string) *sync.Mutex {
	return &a.stripes[maphash.String(a.seed, productID)%lowStockStripes]
}

// Refresh recalcula el total de cada producto indicado y actualiza su pertenencia.
func (a *LowStockAggregator) Refresh(ctx context.Context, productIDs ...string) error {
	for _, id := range productIDs {
		if err := a.refreshOne(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (a *LowStockAggregator) refreshOne(ctx context.Context, productID string) error {
	mu := a.stripe(productID)
	mu.Lock()
	defer mu.Unlock()
	total, err := a.stockRepo.TotalByProduct(ctx, productID)
	if err != nil {
		return err
	}
	a.index.Set(productID, total)
	return nil
}

// Rebuild recalcula el índice completo desde el libro y el catálogo.
func (a *LowStockAggregator) Rebuild(ctx context.Context) error {
	for i := range a.stripes {
		a.stripes[i].Lock()
	}
	defer func() {
		for i := range a.stripes {
			a.stripes[i].Unlock()
		}
	}()

	products, err := a.productRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	totals, err := a.stockRepo.Totals(ctx)
	if err != nil {
		return err
	}
	thresholds := make(map[string]int64, len(products))
	for _, p := range products {
		thresholds[p.ID] = p.ReorderThreshold
	}
	a.index.Reset(thresholds, totals)
	a.log.Info().Int("products", len(products)).Int("low_stock", a.index.Count()).Msg("índice de bajo stock reconstruido")
	return nil
}

// Track registra un producto nuevo o un cambio de punto de reorden. El umbral se relee del
// catálogo bajo el candado de la franja: si el producto ya fue eliminado se retira del
// índice, así una actualización que pierde la carrera contra un borrado no lo reinserta.
func (a *LowStockAggregator) Track(ctx context.Context, p *entity.Product) error {
	mu := a.stripe(p.ID)
	mu.Lock()
	defer mu.Unlock()
	current, err := a.productRepo.GetByID(ctx, p.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if current == nil {
		a.index.Forget(p.ID)
		a.log.Debug().Str("product_id", p.ID).Msg("producto eliminado, no se registra en el índice")
		return nil
	}
	if !a.index.Tracked(current.ID) {
		total, err := a.stockRepo.TotalByProduct(ctx, current.ID)
		if err != nil {
			return err
		}
		a.index.Set(current.ID, total)
	}
	a.index.Track(current.ID, current.ReorderThreshold)
	return nil
}

// Forget retira un producto eliminado del catálogo.
func (a *LowStockAggregator) Forget(productID string) {
	mu := a.stripe(productID)
	mu.Lock()
	defer mu.Unlock()
	a.index.Forget(productID)
}

// IsLowStock indica si el total del producto está en o bajo su punto de reorden.
func (a *LowStockAggregator) IsLowStock(productID string) bool { return a.index.IsLow(productID) }

// ListLowStock productos en bajo stock, ordenados por ID ascendente.
func (a *LowStockAggregator) ListLowStock() []string { return a.index.List() }

// Count tamaño del conjunto de bajo stock.
func (a *LowStockAggregator) Count() int { return a.index.Count() }

// Total total conocido del producto en todas las bodegas.
func (a *LowStockAggregator) Total(productID string) int64 { return a.index.Total(productID) }
