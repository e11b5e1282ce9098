// Package inventory contiene los servicios de dominio del libro de stock: la tabla de
// transiciones del ciclo de vida de un movimiento, la validación de líneas, el cálculo
// de efectos sobre el libro y el índice incremental de bajo stock.
package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Action acción solicitada sobre un movimiento.
type Action string

// Acciones del ciclo de vida.
const (
	ActionSubmit           Action = "submit"
	ActionConfirmAvailable Action = "confirm_available"
	ActionCommit           Action = "commit"
	ActionCancel           Action = "cancel"
)

// Valid indica si la acción es conocida.
func (a Action) Valid() bool {
	switch a {
	case ActionSubmit, ActionConfirmAvailable, ActionCommit, ActionCancel:
		return true
	}
	return false
}

// Effect efecto que el motor debe ejecutar al aplicar una transición.
type Effect int

const (
	// EffectNone cambio de estado sin tocar el libro (submit, cancel antes de done).
	EffectNone Effect = iota
	// EffectCheckAvailability lectura de stock en origen sin reservar (confirm_available).
	EffectCheckAvailability
	// EffectApply aplica los deltas del movimiento en una sola transacción (commit).
	EffectApply
	// EffectReverse registra una reversa enlazada con los deltas inversos (cancel de un done).
	EffectReverse
)

// Outcome resultado de evaluar una acción sobre un estado.
type Outcome struct {
	To     entity.MovementStatus
	Effect Effect
	// NoOp es true cuando la acción ya fue aplicada (llamada repetida): no hay cambios.
	NoOp bool
}

// Next evalúa la tabla cerrada de transiciones:
//
//	draft --submit--> waiting --confirm_available--> ready --commit--> done
//	draft|waiting|ready --cancel--> cancelled
//	done --cancel--> done + reversa enlazada
//
// Repetir la acción cuyo destino es el estado actual es un no-op. Cualquier otra
// combinación devuelve *domain.InvalidStateError.
func Next(m *entity.Movement, action Action) (Outcome, error) {
	invalid := &domain.InvalidStateError{MovementID: m.ID, Status: string(m.Status), Action: string(action)}

	switch m.Status {
	case entity.MovementStatusDraft:
		switch action {
		case ActionSubmit:
			return Outcome{To: entity.MovementStatusWaiting, Effect: EffectNone}, nil
		case ActionCancel:
			return Outcome{To: entity.MovementStatusCancelled, Effect: EffectNone}, nil
		case ActionConfirmAvailable, ActionCommit:
			return Outcome{}, invalid
		}

	case entity.MovementStatusWaiting:
		switch action {
		case ActionSubmit:
			return Outcome{To: m.Status, NoOp: true}, nil
		case ActionConfirmAvailable:
			return Outcome{To: entity.MovementStatusReady, Effect: EffectCheckAvailability}, nil
		case ActionCancel:
			return Outcome{To: entity.MovementStatusCancelled, Effect: EffectNone}, nil
		case ActionCommit:
			return Outcome{}, invalid
		}

	case entity.MovementStatusReady:
		switch action {
		case ActionConfirmAvailable:
			return Outcome{To: m.Status, NoOp: true}, nil
		case ActionCommit:
			return Outcome{To: entity.MovementStatusDone, Effect: EffectApply}, nil
		case ActionCancel:
			return Outcome{To: entity.MovementStatusCancelled, Effect: EffectNone}, nil
		case ActionSubmit:
			return Outcome{}, invalid
		}

	case entity.MovementStatusDone:
		switch action {
		case ActionCommit:
			return Outcome{To: m.Status, NoOp: true}, nil
		case ActionCancel:
			if m.IsReversal() {
				return Outcome{}, invalid
			}
			if m.ReversedBy != "" {
				return Outcome{To: m.Status, NoOp: true}, nil
			}
			return Outcome{To: entity.MovementStatusDone, Effect: EffectReverse}, nil
		case ActionSubmit, ActionConfirmAvailable:
			return Outcome{}, invalid
		}

	case entity.MovementStatusCancelled:
		switch action {
		case ActionCancel:
			return Outcome{To: m.Status, NoOp: true}, nil
		case ActionSubmit, ActionConfirmAvailable, ActionCommit:
			return Outcome{}, invalid
		}
	}
	return Outcome{}, invalid
}
