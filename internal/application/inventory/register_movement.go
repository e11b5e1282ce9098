package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateFromRequest adapta el request HTTP al caso de uso CreateMovement.
func (uc *MovementUseCase) CreateFromRequest(ctx context.Context, userID string, in dto.CreateMovementRequest) (*entity.Movement, error) {
	return uc.CreateMovement(ctx, MovementInput{
		Type:      entity.MovementType(in.Type),
		Reference: in.Reference,
		Lines:     LinesFromRequest(in.Lines),
		CreatedBy: userID,
	})
}

// UpdateLinesFromRequest adapta el request HTTP al caso de uso UpdateLines.
func (uc *MovementUseCase) UpdateLinesFromRequest(ctx context.Context, id, userID string, in dto.UpdateLinesRequest) (*entity.Movement, error) {
	return uc.UpdateLines(ctx, id, LinesFromRequest(in.Lines), userID)
}

// LinesFromRequest convierte las líneas del body; LineNo se asigna al validar.
func LinesFromRequest(in []dto.MovementLineRequest) []entity.MovementLine {
	lines := make([]entity.MovementLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, entity.MovementLine{
			ProductID:         l.ProductID,
			SourceWarehouseID: l.SourceWarehouseID,
			DestWarehouseID:   l.DestWarehouseID,
			Quantity:          l.Quantity,
		})
	}
	return lines
}

// ToMovementResponse convierte la entidad a la salida HTTP.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	lines := make([]dto.MovementLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, dto.MovementLineResponse{
			LineNo:            l.LineNo,
			ProductID:         l.ProductID,
			SourceWarehouseID: l.SourceWarehouseID,
			DestWarehouseID:   l.DestWarehouseID,
			Quantity:          l.Quantity,
		})
	}
	return dto.MovementResponse{
		ID:          m.ID,
		Type:        string(m.Type),
		Status:      string(m.Status),
		Reference:   m.Reference,
		Lines:       lines,
		Version:     m.Version,
		IsReversal:  m.IsReversal(),
		ReversalOf:  m.ReversalOf,
		ReversedBy:  m.ReversedBy,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DoneAt:      m.DoneAt,
		CancelledAt: m.CancelledAt,
	}
}

// ToMovementPageResponse convierte una página del historial.
func ToMovementPageResponse(p *MovementPage) dto.MovementPageResponse {
	items := make([]dto.MovementResponse, 0, len(p.Items))
	for _, m := range p.Items {
		items = append(items, ToMovementResponse(m))
	}
	return dto.MovementPageResponse{Items: items, NextCursor: p.NextCursor}
}

// ToStockLevelResponses convierte filas del libro.
func ToStockLevelResponses(rows []*entity.StockLevel) []dto.StockLevelResponse {
	out := make([]dto.StockLevelResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockLevelResponse{ProductID: r.ProductID, WarehouseID: r.WarehouseID, Quantity: r.Quantity})
	}
	return out
}
