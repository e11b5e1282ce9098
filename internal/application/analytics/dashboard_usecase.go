// Package analytics contiene los casos de uso de lectura agregada para el tablero
// principal del inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const dashboardRecentMovements = 5 // movimientos en el widget del dashboard

var (
	pendingReceipt  = []entity.MovementStatus{entity.MovementStatusDraft, entity.MovementStatusWaiting}
	pendingOutbound = []entity.MovementStatus{entity.MovementStatusDraft, entity.MovementStatusWaiting, entity.MovementStatusReady}
)

// DashboardUseCase genera el resumen del tablero.
//
// El conteo de bajo stock sale del índice incremental; el resto son consultas de
// solo lectura a los repositorios.
type DashboardUseCase struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	movRepo       repository.MovementRepository
	lowStock      *inventory.LowStockAggregator
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	movRepo repository.MovementRepository,
	lowStock *inventory.LowStockAggregator,
) *DashboardUseCase {
	return &DashboardUseCase{
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		movRepo:       movRepo,
		lowStock:      lowStock,
		now:           time.Now,
	}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cinco consultas en paralelo:
//  1. Count de productos
//  2. Bodegas
//  3. Recepciones pendientes  (draft, waiting)
//  4. Entregas y traslados pendientes (draft, waiting, ready)
//  5. Últimos movimientos
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	var out dto.DashboardSummaryDTO
	var recent []*entity.Movement

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.productRepo.Count(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: productos: %w", err)
		}
		out.TotalProducts = n
		return nil
	})
	g.Go(func() error {
		list, err := uc.warehouseRepo.List(gctx, 0, 0)
		if err != nil {
			return fmt.Errorf("dashboard: bodegas: %w", err)
		}
		out.TotalWarehouses = len(list)
		return nil
	})
	g.Go(func() error {
		n, err := uc.movRepo.CountByTypeAndStatus(gctx, entity.MovementTypeReceipt, pendingReceipt)
		if err != nil {
			return fmt.Errorf("dashboard: recepciones pendientes: %w", err)
		}
		out.PendingReceipts = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.movRepo.CountByTypeAndStatus(gctx, entity.MovementTypeDelivery, pendingOutbound)
		if err != nil {
			return fmt.Errorf("dashboard: entregas pendientes: %w", err)
		}
		out.PendingDeliveries = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.movRepo.CountByTypeAndStatus(gctx, entity.MovementTypeTransfer, pendingOutbound)
		if err != nil {
			return fmt.Errorf("dashboard: traslados pendientes: %w", err)
		}
		out.PendingTransfers = n
		return nil
	})
	g.Go(func() error {
		list, err := uc.movRepo.List(gctx, repository.MovementFilter{}, nil, dashboardRecentMovements)
		if err != nil {
			return fmt.Errorf("dashboard: últimos movimientos: %w", err)
		}
		recent = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.LowStockProducts = uc.lowStock.Count()
	out.RecentMovements = make([]dto.MovementResponse, 0, len(recent))
	for _, m := range recent {
		out.RecentMovements = append(out.RecentMovements, inventory.ToMovementResponse(m))
	}
	out.DateLabel = monthLabel(uc.now())
	return &out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
