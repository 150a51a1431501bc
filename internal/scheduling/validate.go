// Package scheduling holds the assignment rules for avisos: validation of
// proposed visit date/turno/time tuples and the lifecycle transitions. It is
// UI- and storage-free; every entry point (import, quick edit, bulk assign)
// goes through the same functions.
package scheduling

import (
	"errors"
	"fmt"
	"time"

	"avisos/internal/model"
)

var (
	ErrFechaInvalida = errors.New("invalid visit date, expected YYYY-MM-DD")
	ErrHoraInvalida  = errors.New("invalid time, expected HH:MM")
	ErrFinDeSemana   = errors.New("weekend assignments are not allowed")
	ErrRangoHorario  = errors.New("start time must be earlier than end time")
)

// Default turno windows applied when a turno is set without explicit times.
const (
	MananaInicio = "09:00"
	MananaFin    = "13:00"
	TardeInicio  = "15:00"
	TardeFin     = "19:00"
)

const (
	fechaLayout = "2006-01-02"
	horaLayout  = "15:04"
)

// Asignacion is a proposed scheduling tuple plus the estado that must
// accompany it. Blank means "not set".
type Asignacion struct {
	FechaVisita string
	Turno       string
	HoraInicio  string
	HoraFin     string
	Tecnico     string
	Estado      string
}

// DefaultWindow returns the fixed time window for a turno, and whether the
// turno has one.
func DefaultWindow(turno string) (inicio, fin string, ok bool) {
	switch turno {
	case model.TurnoManana:
		return MananaInicio, MananaFin, true
	case model.TurnoTarde:
		return TardeInicio, TardeFin, true
	}
	return "", "", false
}

// Validate normalizes and checks a proposed assignment. On success it
// returns the tuple to persist; on failure it returns the violated rule and
// nothing must be written.
//
// Rules, in order of precedence:
//  1. a turno with both times blank receives the default window;
//  2. a blank visit date forces estado "sin asignar" and clears turno and
//     both times, skipping every later check;
//  3. when both times are present, start must be strictly before end;
//  4. the date must parse as YYYY-MM-DD and must not fall on a weekend;
//  5. any non-blank time must parse as HH:MM.
func Validate(a Asignacion) (Asignacion, error) {
	a.FechaVisita = model.Clean(a.FechaVisita)
	a.Turno = model.Clean(a.Turno)
	a.HoraInicio = model.Clean(a.HoraInicio)
	a.HoraFin = model.Clean(a.HoraFin)
	a.Tecnico = model.Clean(a.Tecnico)

	if a.Turno != "" && a.HoraInicio == "" && a.HoraFin == "" {
		if hi, hf, ok := DefaultWindow(a.Turno); ok {
			a.HoraInicio, a.HoraFin = hi, hf
		}
	}

	if a.FechaVisita == "" {
		a.Estado = model.EstadoSinAsignar
		a.Turno = ""
		a.HoraInicio = ""
		a.HoraFin = ""
		return a, nil
	}

	if a.HoraInicio != "" && a.HoraFin != "" && a.HoraInicio >= a.HoraFin {
		return Asignacion{}, fmt.Errorf("%w: %s >= %s", ErrRangoHorario, a.HoraInicio, a.HoraFin)
	}

	fecha, err := time.Parse(fechaLayout, a.FechaVisita)
	if err != nil {
		return Asignacion{}, fmt.Errorf("%w: %q", ErrFechaInvalida, a.FechaVisita)
	}
	if IsWeekend(fecha) {
		return Asignacion{}, fmt.Errorf("%w: %s", ErrFinDeSemana, a.FechaVisita)
	}

	for _, h := range []string{a.HoraInicio, a.HoraFin} {
		if h == "" {
			continue
		}
		if _, err := time.Parse(horaLayout, h); err != nil {
			return Asignacion{}, fmt.Errorf("%w: %q", ErrHoraInvalida, h)
		}
	}

	return a, nil
}

// IsWeekend reports whether t falls on Saturday or Sunday (ISO weekday 6/7).
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ValidFecha reports whether s is a well-formed YYYY-MM-DD date.
func ValidFecha(s string) bool {
	_, err := time.Parse(fechaLayout, s)
	return err == nil
}
