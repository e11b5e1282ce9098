package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockReportLine una fila del reporte de existencias de una bodega.
type StockReportLine struct {
	ProductID        string
	SKU              string
	Name             string
	UnitOfMeasure    string
	Quantity         int64
	ReorderThreshold int64
	LowStock         bool // según el total del producto en todas las bodegas
}

// StockReport existencias de una bodega en un instante.
type StockReport struct {
	Warehouse   *entity.Warehouse
	Lines       []StockReportLine
	TotalUnits  int64
	GeneratedAt time.Time
}

// StockReportGenerator renderiza el reporte (PDF con maroto en infraestructura).
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report *StockReport) ([]byte, error)
}

// ReportUseCase arma el reporte de existencias y delega el render.
type ReportUseCase struct {
	query       *QueryUseCase
	productRepo repository.ProductRepository
	generator   StockReportGenerator
	now         func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(query *QueryUseCase, productRepo repository.ProductRepository, generator StockReportGenerator) *ReportUseCase {
	return &ReportUseCase{query: query, productRepo: productRepo, generator: generator, now: time.Now}
}

// BuildWarehouseReport filas con stock distinto de cero de la bodega, en orden de producto.
func (uc *ReportUseCase) BuildWarehouseReport(ctx context.Context, warehouseID string) (*StockReport, error) {
	w, err := uc.query.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	rows, err := uc.query.ListStockByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	report := &StockReport{Warehouse: w, Lines: make([]StockReportLine, 0, len(rows)), GeneratedAt: uc.now()}
	for _, r := range rows {
		line := StockReportLine{ProductID: r.ProductID, Quantity: r.Quantity, LowStock: uc.query.IsLowStock(r.ProductID)}
		p, err := uc.productRepo.GetByID(ctx, r.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			line.SKU, line.Name, line.UnitOfMeasure, line.ReorderThreshold = p.SKU, p.Name, p.UnitOfMeasure, p.ReorderThreshold
		}
		report.Lines = append(report.Lines, line)
		report.TotalUnits += r.Quantity
	}
	return report, nil
}

// WarehouseReportPDF genera el documento de la bodega.
func (uc *ReportUseCase) WarehouseReportPDF(ctx context.Context, warehouseID string) ([]byte, error) {
	report, err := uc.BuildWarehouseReport(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateStockReport(ctx, report)
}
