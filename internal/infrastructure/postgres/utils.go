package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos SQLSTATE que el libro traduce a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// mapError traduce errores de PostgreSQL a errores de dominio; op da contexto al resto.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrencyConflict)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrNegativeStock)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeNumericOutOfRange:
		return fmt.Errorf("%s: %w", op, domain.ErrValidation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
