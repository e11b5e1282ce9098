package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrValidation          = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidState        = errors.New("transición no permitida para el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrNegativeStock       = errors.New("el movimiento dejaría stock negativo")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")
)

// StockError detalla un fallo de disponibilidad para un par producto/bodega.
// Err es ErrInsufficientStock (chequeo en confirm_available) o ErrNegativeStock (guarda del commit).
type StockError struct {
	Err         error
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: producto %s en bodega %s (solicitado %d, disponible %d)",
		e.Err.Error(), e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.Err }

// InvalidStateError indica que la acción no aplica al estado actual del movimiento.
type InvalidStateError struct {
	MovementID string
	Status     string
	Action     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: movimiento %s en estado %q no admite %q",
		ErrInvalidState.Error(), e.MovementID, e.Status, e.Action)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// Validationf envuelve ErrValidation con un detalle legible.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
