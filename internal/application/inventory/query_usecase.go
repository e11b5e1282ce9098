package inventory

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// PageConfig tamaños de página del historial (LEDGER_PAGE_SIZE / LEDGER_MAX_PAGE_SIZE).
type PageConfig struct {
	Default int
	Max     int
}

// DefaultPageConfig 20 por defecto, 100 máximo.
func DefaultPageConfig() PageConfig { return PageConfig{Default: 20, Max: 100} }

// MovementPage una página del historial; NextCursor vacío indica que no hay más.
type MovementPage struct {
	Items      []*entity.Movement
	NextCursor string
}

// QueryUseCase proyecciones de solo lectura sobre el libro y los movimientos.
type QueryUseCase struct {
	movRepo       repository.MovementRepository
	stockRepo     repository.StockLevelRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	lowStock      *LowStockAggregator
	page          PageConfig
}

// NewQueryUseCase construye la fachada de consultas.
func NewQueryUseCase(
	movRepo repository.MovementRepository,
	stockRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	lowStock *LowStockAggregator,
	page PageConfig,
) *QueryUseCase {
	if page.Default <= 0 {
		page.Default = DefaultPageConfig().Default
	}
	if page.Max < page.Default {
		page.Max = page.Default
	}
	return &QueryUseCase{
		movRepo:       movRepo,
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		lowStock:      lowStock,
		page:          page,
	}
}

// GetMovement devuelve el movimiento o domain.ErrNotFound.
func (uc *QueryUseCase) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// GetStockLevel cantidad disponible del producto en la bodega (0 si nunca tuvo movimientos).
func (uc *QueryUseCase) GetStockLevel(ctx context.Context, productID, warehouseID string) (int64, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if err := uc.requireWarehouse(ctx, warehouseID); err != nil {
		return 0, err
	}
	lvl, err := uc.stockRepo.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	return lvl.Quantity, nil
}

// ListStockByWarehouse filas con cantidad distinta de cero, ordenadas por producto.
func (uc *QueryUseCase) ListStockByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockLevel, error) {
	if err := uc.requireWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	rows, err := uc.stockRepo.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.StockLevel, 0, len(rows))
	for _, r := range rows {
		if r.Quantity != 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountByTypeAndStatus cuenta movimientos del tipo cuyo estado pertenece al conjunto
// (conjunto vacío = todos los estados).
func (uc *QueryUseCase) CountByTypeAndStatus(ctx context.Context, movementType entity.MovementType, statuses []entity.MovementStatus) (int, error) {
	if !movementType.Valid() {
		return 0, domain.Validationf("tipo de movimiento desconocido %q", movementType)
	}
	for _, s := range statuses {
		if !s.Valid() {
			return 0, domain.Validationf("estado desconocido %q", s)
		}
	}
	return uc.movRepo.CountByTypeAndStatus(ctx, movementType, statuses)
}

// ListMovements historial ordenado por fecha de creación descendente (ID descendente como
// desempate). cursor es el NextCursor de la página anterior o vacío.
func (uc *QueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, cursor string, limit int) (*MovementPage, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Validationf("tipo de movimiento desconocido %q", filter.Type)
	}
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return nil, domain.Validationf("estado desconocido %q", s)
		}
	}
	switch {
	case limit <= 0:
		limit = uc.page.Default
	case limit > uc.page.Max:
		limit = uc.page.Max
	}
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	items, err := uc.movRepo.List(ctx, filter, after, limit+1)
	if err != nil {
		return nil, err
	}
	page := &MovementPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		last := page.Items[limit-1]
		page.NextCursor = EncodeCursor(repository.MovementCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// IsLowStock ver LowStockAggregator.
func (uc *QueryUseCase) IsLowStock(productID string) bool { return uc.lowStock.IsLowStock(productID) }

// ListLowStock ver LowStockAggregator.
func (uc *QueryUseCase) ListLowStock() []string { return uc.lowStock.ListLowStock() }

func (uc *QueryUseCase) requireWarehouse(ctx context.Context, warehouseID string) error {
	w, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return nil
}

// EncodeCursor cursor opaco: base64url("<unix nanos>:<id>").
func EncodeCursor(c repository.MovementCursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + ":" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor inverso de EncodeCursor; vacío devuelve nil.
func DecodeCursor(s string) (*repository.MovementCursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.Validationf("cursor inválido")
	}
	nanos, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, domain.Validationf("cursor inválido")
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, domain.Validationf("cursor inválido")
	}
	return &repository.MovementCursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}
