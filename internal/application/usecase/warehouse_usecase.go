package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas. Desactivar una bodega no borra su stock:
// solo impide que nuevos movimientos la referencien.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	code := normalizeCode(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.Validationf("code y name son requeridos")
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		Active:    active,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	if in.Code != nil {
		code := normalizeCode(*in.Code)
		if code == "" {
			return nil, domain.Validationf("code no puede ser vacío")
		}
		warehouse.Code = code
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validationf("name no puede ser vacío")
		}
		warehouse.Name = name
	}
	if in.Address != nil {
		warehouse.Address = *in.Address
	}
	if in.Active != nil {
		warehouse.Active = *in.Active
	}
	warehouse.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Active:    w.Active,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
