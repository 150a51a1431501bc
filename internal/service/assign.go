package service

import (
	"context"
	"fmt"

	"avisos/internal/model"
	"avisos/internal/scheduling"
)

// SchedulingStore is the slice of the aviso store the transition engine
// writes through.
type SchedulingStore interface {
	UpdateScheduling(ctx context.Context, orden string, cliente, horaInicio, horaFin, tecnico, turno, fechaVisita *string) error
	ClearScheduling(ctx context.Context, orden string) error
	MarkScheduled(ctx context.Context, orden string) error
	MarkDone(ctx context.Context, orden string) error
	MarkCancelled(ctx context.Context, orden, motivo string) error
	MarkReinstated(ctx context.Context, orden string) error
}

// AssignService runs validated assignments and lifecycle transitions. Every
// entry point (single assign, bulk assign, unassign, the estado buttons)
// funnels through here so the rules live in exactly one place.
type AssignService struct {
	store SchedulingStore
}

func NewAssignService(store SchedulingStore) *AssignService {
	return &AssignService{store: store}
}

// Assign validates the proposed tuple and commits it. A blank date is the
// unassign path: scheduling fields are cleared and estado forced to
// "sin asignar". A valid date moves a sin-asignar aviso to pendiente.
func (s *AssignService) Assign(ctx context.Context, orden string, a scheduling.Asignacion) error {
	if orden == "" {
		return ErrMissingIdentifier
	}

	v, err := scheduling.Validate(a)
	if err != nil {
		return err
	}

	if v.FechaVisita == "" {
		return s.store.ClearScheduling(ctx, orden)
	}

	err = s.store.UpdateScheduling(ctx, orden, nil,
		nullable(v.HoraInicio), nullable(v.HoraFin),
		nullable(v.Tecnico), nullable(v.Turno), nullable(v.FechaVisita))
	if err != nil {
		return err
	}
	return s.store.MarkScheduled(ctx, orden)
}

// BulkError records a single failed orden inside a bulk assignment.
type BulkError struct {
	Orden string `json:"orden"`
	Err   string `json:"error"`
}

// AssignBulk applies one validated tuple to many ordenes. The batch is not
// atomic: failures are accumulated per orden and already-applied updates are
// retained. The tuple itself is validated once, up front.
func (s *AssignService) AssignBulk(ctx context.Context, ordenes []string, a scheduling.Asignacion) (applied int, failures []BulkError, err error) {
	if _, err := scheduling.Validate(a); err != nil {
		return 0, nil, err
	}

	for _, orden := range ordenes {
		if err := s.Assign(ctx, orden, a); err != nil {
			failures = append(failures, BulkError{Orden: orden, Err: err.Error()})
			continue
		}
		applied++
	}
	return applied, failures, nil
}

// Unassign returns the aviso to "sin asignar", clearing date, turno, times
// and technician.
func (s *AssignService) Unassign(ctx context.Context, orden string) error {
	return s.applyChange(ctx, orden, scheduling.Unassign(), "")
}

// Done marks the visit as carried out.
func (s *AssignService) Done(ctx context.Context, orden string) error {
	return s.applyChange(ctx, orden, scheduling.Done(), "")
}

// Cancel marks the aviso anulado, optionally recording a reason in the
// billing notes. Confirmation is the caller's responsibility.
func (s *AssignService) Cancel(ctx context.Context, orden, motivo string) error {
	return s.applyChange(ctx, orden, scheduling.Cancel(), motivo)
}

// Reinstate reverts a cancelled aviso to pendiente without restoring any
// scheduling field.
func (s *AssignService) Reinstate(ctx context.Context, orden string) error {
	return s.applyChange(ctx, orden, scheduling.Reinstate(), "")
}

func (s *AssignService) applyChange(ctx context.Context, orden string, ch scheduling.Change, motivo string) error {
	if orden == "" {
		return ErrMissingIdentifier
	}
	if ch.ClearScheduling {
		return s.store.ClearScheduling(ctx, orden)
	}
	switch ch.Estado {
	case model.EstadoRealizado:
		return s.store.MarkDone(ctx, orden)
	case model.EstadoAnulado:
		return s.store.MarkCancelled(ctx, orden, motivo)
	case model.EstadoPendiente:
		return s.store.MarkReinstated(ctx, orden)
	default:
		return fmt.Errorf("unsupported transition to %q", ch.Estado)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
