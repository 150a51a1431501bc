package scheduling

import "avisos/internal/model"

// Change is the field set a lifecycle transition wants persisted. A nil
// pointer leaves the column untouched; a pointer to "" writes NULL.
type Change struct {
	Estado          string
	ClearScheduling bool // fechaVisita, turno, horaInicio, horaFin, tecnico -> NULL
}

// Unassign returns a scheduled aviso to "sin asignar", dropping the date,
// turno, both times and the technician.
func Unassign() Change {
	return Change{Estado: model.EstadoSinAsignar, ClearScheduling: true}
}

// Done marks the visit as carried out. No other field is touched, so the
// date and technician remain for the record.
func Done() Change {
	return Change{Estado: model.EstadoRealizado}
}

// Cancel marks the aviso anulado. The optional reason is appended to the
// billing notes by the store, never substituted.
func Cancel() Change {
	return Change{Estado: model.EstadoAnulado}
}

// Reinstate reverts a cancelled aviso to pendiente. Previously cleared
// scheduling fields are not restored.
func Reinstate() Change {
	return Change{Estado: model.EstadoPendiente}
}
