package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const defaultReorderThreshold = 10

// ProductUseCase casos de uso CRUD para productos. El stock no se edita aquí: se mueve
// con movimientos. Cada alta, cambio de punto de reorden o borrado se refleja en el
// índice de bajo stock.
type ProductUseCase struct {
	repo     repository.ProductRepository
	lowStock *inventory.LowStockAggregator
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, lowStock *inventory.LowStockAggregator) *ProductUseCase {
	return &ProductUseCase{repo: repo, lowStock: lowStock}
}

// Create crea un nuevo producto. El SKU se normaliza y debe ser único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := normalizeCode(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, domain.Validationf("sku y name son requeridos")
	}
	threshold := int64(defaultReorderThreshold)
	if in.ReorderThreshold != nil {
		threshold = *in.ReorderThreshold
	}
	if threshold < 0 {
		return nil, domain.Validationf("reorder_threshold no puede ser negativo")
	}
	if in.UnitOfMeasure == "" {
		in.UnitOfMeasure = "pcs"
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:               uuid.New().String(),
		SKU:              sku,
		Name:             name,
		CategoryID:       in.CategoryID,
		UnitOfMeasure:    in.UnitOfMeasure,
		ReorderThreshold: threshold,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.lowStock.Track(ctx, product); err != nil {
		return nil, err
	}
	return uc.toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return uc.toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar el SKU ni el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validationf("name no puede ser vacío")
		}
		product.Name = name
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.UnitOfMeasure != nil {
		product.UnitOfMeasure = *in.UnitOfMeasure
	}
	if in.ReorderThreshold != nil {
		if *in.ReorderThreshold < 0 {
			return nil, domain.Validationf("reorder_threshold no puede ser negativo")
		}
		product.ReorderThreshold = *in.ReorderThreshold
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.lowStock.Track(ctx, product); err != nil {
		return nil, err
	}
	return uc.toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *uc.toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina un producto. Falla con domain.ErrConflict si tiene movimientos o stock.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.lowStock.Forget(id)
	return nil
}

func (uc *ProductUseCase) toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		CategoryID:       p.CategoryID,
		UnitOfMeasure:    p.UnitOfMeasure,
		ReorderThreshold: p.ReorderThreshold,
		TotalStock:       uc.lowStock.Total(p.ID),
		LowStock:         uc.lowStock.IsLowStock(p.ID),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
