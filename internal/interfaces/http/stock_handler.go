package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// StockHandler consultas de stock puntual, bajo stock y reposición.
type StockHandler struct {
	queries       *appinv.QueryUseCase
	replenishment *appinv.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *appinv.QueryUseCase, replenishment *appinv.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{queries: queries, replenishment: replenishment}
}

// GetLevel godoc
// @Summary      Cantidad de un producto en una bodega
// @Description  Un par sin fila en el libro responde cantidad 0.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId    path  string  true  "ID del producto"
// @Param        warehouseId  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/{warehouseId} [get]
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	productID, warehouseID := c.Params("productId"), c.Params("warehouseId")
	qty, err := h.queries.GetStockLevel(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockLevelResponse{ProductID: productID, WarehouseID: warehouseID, Quantity: qty})
}

// LowStock godoc
// @Summary      Productos en o bajo su punto de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockResponse
// @Router       /api/inventory/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	ids := h.queries.ListLowStock()
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(dto.LowStockResponse{ProductIDs: ids, Count: len(ids)})
}

// Replenishment godoc
// @Summary      Sugerencias de reposición ordenadas por urgencia
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
