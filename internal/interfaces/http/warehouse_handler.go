package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// WarehouseHandler maneja las peticiones HTTP para Warehouse y su stock (protegido).
type WarehouseHandler struct {
	uc      *usecase.WarehouseUseCase
	queries *appinv.QueryUseCase
	reports *appinv.ReportUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase, queries *appinv.QueryUseCase, reports *appinv.ReportUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc, queries: queries, reports: reports}
}

// Create godoc
// @Summary      Crear bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "Datos de la bodega"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Code == "" || in.Name == "" {
		return badRequest(c, "VALIDATION", "code y name son requeridos")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "bodega no encontrada"})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la bodega"
// @Param        body  body  dto.UpdateWarehouseRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.WarehouseResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [put]
func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "bodega no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Stock actual de una bodega
// @Description  Solo filas con cantidad distinta de cero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/stock [get]
func (h *WarehouseHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	rows, err := h.queries.ListStockByWarehouse(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.WarehouseStockResponse{WarehouseID: id, Items: appinv.ToStockLevelResponses(rows)})
}

// StockReport godoc
// @Summary      Reporte PDF del stock de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/stock/report [get]
func (h *WarehouseHandler) StockReport(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.reports.WarehouseReportPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="stock-`+id+`.pdf"`)
	return c.Send(pdf)
}
