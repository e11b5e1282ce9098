package entity

import "time"

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento.
const (
	MovementTypeReceipt  MovementType = "receipt"  // entrada a una bodega destino
	MovementTypeDelivery MovementType = "delivery" // salida desde una bodega origen
	MovementTypeTransfer MovementType = "transfer" // traslado origen -> destino
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeReceipt, MovementTypeDelivery, MovementTypeTransfer:
		return true
	}
	return false
}

// MovementStatus estado del ciclo de vida de un movimiento.
type MovementStatus string

// Estados del ciclo de vida.
const (
	MovementStatusDraft     MovementStatus = "draft"
	MovementStatusWaiting   MovementStatus = "waiting"
	MovementStatusReady     MovementStatus = "ready"
	MovementStatusDone      MovementStatus = "done"
	MovementStatusCancelled MovementStatus = "cancelled"
)

// Valid indica si el estado es uno de los conocidos.
func (s MovementStatus) Valid() bool {
	switch s {
	case MovementStatusDraft, MovementStatusWaiting, MovementStatusReady,
		MovementStatusDone, MovementStatusCancelled:
		return true
	}
	return false
}

// Terminal indica si el estado ya no admite cambios (done o cancelled).
func (s MovementStatus) Terminal() bool {
	return s == MovementStatusDone || s == MovementStatusCancelled
}

// Editable indica si las líneas del movimiento aún pueden modificarse.
func (s MovementStatus) Editable() bool {
	return s == MovementStatusDraft || s == MovementStatusWaiting
}

// MovementLine una línea de un movimiento. Según el tipo se usa bodega destino (receipt),
// origen (delivery) o ambas (transfer).
type MovementLine struct {
	LineNo            int
	ProductID         string
	SourceWarehouseID string
	DestWarehouseID   string
	Quantity          int64 // siempre positiva
}

// Movement representa una solicitud de cambio de stock (recepción, entrega o traslado).
// Solo es mutable en draft/waiting; en done es inmutable y las correcciones se hacen con
// un movimiento de reversa enlazado (ReversalOf / ReversedBy).
type Movement struct {
	ID          string
	Type        MovementType
	Status      MovementStatus
	Reference   string
	Lines       []MovementLine
	Version     int64
	ReversalOf  string // ID del movimiento que compensa (vacío si no es reversa)
	ReversedBy  string // ID de la reversa que lo compensa (vacío si no fue revertido)
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DoneAt      *time.Time
	CancelledAt *time.Time
}

// IsReversal indica si el movimiento es una reversa compensatoria.
func (m *Movement) IsReversal() bool { return m.ReversalOf != "" }

// Clone devuelve una copia profunda (líneas y punteros de fecha incluidos).
func (m *Movement) Clone() *Movement {
	if m == nil {
		return nil
	}
	c := *m
	c.Lines = append([]MovementLine(nil), m.Lines...)
	if m.DoneAt != nil {
		t := *m.DoneAt
		c.DoneAt = &t
	}
	if m.CancelledAt != nil {
		t := *m.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}
