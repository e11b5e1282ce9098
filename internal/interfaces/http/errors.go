package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorStatus asocia cada error de dominio a su estado HTTP y código estable.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrInsufficientStock, fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	{domain.ErrNegativeStock, fiber.StatusUnprocessableEntity, "NEGATIVE_STOCK"},
	{domain.ErrConcurrencyConflict, fiber.StatusServiceUnavailable, "CONCURRENCY_CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError traduce err a dto.ErrorResponse. Errores no clasificados responden 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			if e.status == fiber.StatusServiceUnavailable {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
