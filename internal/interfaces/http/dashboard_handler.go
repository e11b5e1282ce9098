package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen operativo del libro
// @Description  Conteos de catálogo, bajo stock, movimientos pendientes por tipo y los 5 movimientos más recientes.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
