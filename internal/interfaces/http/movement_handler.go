package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementHandler maneja creación, edición, transiciones y consultas de movimientos.
type MovementHandler struct {
	engine  *appinv.MovementUseCase
	queries *appinv.QueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(engine *appinv.MovementUseCase, queries *appinv.QueryUseCase) *MovementHandler {
	return &MovementHandler{engine: engine, queries: queries}
}

// Create godoc
// @Summary      Crear movimiento (queda en draft)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "Tipo, referencia y líneas"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	m, err := h.engine.CreateFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appinv.ToMovementResponse(m))
}

// UpdateLines godoc
// @Summary      Reemplazar líneas (solo draft o waiting)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del movimiento"
// @Param        body  body  dto.UpdateLinesRequest  true  "Líneas nuevas"
// @Success      200   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/lines [put]
func (h *MovementHandler) UpdateLines(c *fiber.Ctx) error {
	var in dto.UpdateLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	m, err := h.engine.UpdateLinesFromRequest(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appinv.ToMovementResponse(m))
}

// Transition godoc
// @Summary      Ejecutar una acción del ciclo de vida
// @Description  submit | confirm | commit | cancel. Repetir la acción ya aplicada es un no-op.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del movimiento"
// @Param        action  path  string  true  "submit|confirm|commit|cancel"
// @Success      200     {object}  dto.MovementResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Failure      503     {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/{action} [post]
func (h *MovementHandler) Transition(c *fiber.Ctx) error {
	action, ok := parseAction(c.Params("action"))
	if !ok {
		return badRequest(c, "INVALID_ACTION", "acción desconocida: use submit, confirm, commit o cancel")
	}
	m, err := h.engine.Transition(c.UserContext(), c.Params("id"), action, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appinv.ToMovementResponse(m))
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.queries.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appinv.ToMovementResponse(m))
}

// List godoc
// @Summary      Historial de movimientos (más recientes primero)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "receipt|delivery|transfer"
// @Param        status        query  string  false  "Estados separados por coma"
// @Param        product_id    query  string  false  "Producto en alguna línea"
// @Param        warehouse_id  query  string  false  "Bodega origen o destino"
// @Param        from          query  string  false  "Desde (RFC3339, inclusivo)"
// @Param        to            query  string  false  "Hasta (RFC3339, exclusivo)"
// @Param        cursor        query  string  false  "Cursor opaco de la página anterior"
// @Param        limit         query  int     false  "Tamaño de página"  default(20)
// @Success      200  {object}  dto.MovementPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		Type:        entity.MovementType(c.Query("type")),
		Statuses:    parseStatuses(c.Query("status")),
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	}
	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return badRequest(c, "VALIDATION", "from debe ser RFC3339")
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return badRequest(c, "VALIDATION", "to debe ser RFC3339")
	}
	page, err := h.queries.ListMovements(c.UserContext(), filter, c.Query("cursor"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appinv.ToMovementPageResponse(page))
}

// Count godoc
// @Summary      Contar movimientos por tipo y conjunto de estados
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  true   "receipt|delivery|transfer"
// @Param        status  query  string  false  "Estados separados por coma (vacío = todos)"
// @Success      200  {object}  dto.CountResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/count [get]
func (h *MovementHandler) Count(c *fiber.Ctx) error {
	n, err := h.queries.CountByTypeAndStatus(c.UserContext(),
		entity.MovementType(c.Query("type")), parseStatuses(c.Query("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}

// parseAction acepta "confirm" como alias corto de confirm_available.
func parseAction(s string) (inventory.Action, bool) {
	if s == "confirm" {
		return inventory.ActionConfirmAvailable, true
	}
	a := inventory.Action(s)
	return a, a.Valid()
}

func parseStatuses(raw string) []entity.MovementStatus {
	if raw == "" {
		return nil
	}
	var out []entity.MovementStatus
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, entity.MovementStatus(s))
		}
	}
	return out
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
