package scheduling

import (
	"errors"
	"testing"
	"time"

	"avisos/internal/model"
)

func TestValidateDefaultWindowManana(t *testing.T) {
	v, err := Validate(Asignacion{FechaVisita: "2025-06-16", Turno: model.TurnoManana})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.HoraInicio != "09:00" || v.HoraFin != "13:00" {
		t.Errorf("Expected 09:00-13:00, got %s-%s", v.HoraInicio, v.HoraFin)
	}
}

func TestValidateDefaultWindowTarde(t *testing.T) {
	v, err := Validate(Asignacion{FechaVisita: "2025-06-16", Turno: model.TurnoTarde})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.HoraInicio != "15:00" || v.HoraFin != "19:00" {
		t.Errorf("Expected 15:00-19:00, got %s-%s", v.HoraInicio, v.HoraFin)
	}
}

func TestValidateExplicitTimesKept(t *testing.T) {
	v, err := Validate(Asignacion{
		FechaVisita: "2025-06-16",
		Turno:       model.TurnoManana,
		HoraInicio:  "10:30",
		HoraFin:     "12:00",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.HoraInicio != "10:30" || v.HoraFin != "12:00" {
		t.Errorf("Expected explicit times kept, got %s-%s", v.HoraInicio, v.HoraFin)
	}
}

func TestValidateBlankDateForcesUnscheduled(t *testing.T) {
	v, err := Validate(Asignacion{
		Turno:      model.TurnoManana,
		HoraInicio: "10:00",
		HoraFin:    "11:00",
		Tecnico:    "Pedro",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Estado != model.EstadoSinAsignar {
		t.Errorf("Expected estado %q, got %q", model.EstadoSinAsignar, v.Estado)
	}
	if v.Turno != "" || v.HoraInicio != "" || v.HoraFin != "" {
		t.Errorf("Expected turno and times cleared, got %q %q %q", v.Turno, v.HoraInicio, v.HoraFin)
	}
	if v.Tecnico != "Pedro" {
		t.Errorf("Expected tecnico untouched, got %q", v.Tecnico)
	}
}

func TestValidateBlankDatePrecedesOtherChecks(t *testing.T) {
	// Inverted times would fail, but the blank date wins and clears them.
	v, err := Validate(Asignacion{HoraInicio: "18:00", HoraFin: "09:00"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Estado != model.EstadoSinAsignar {
		t.Errorf("Expected estado %q, got %q", model.EstadoSinAsignar, v.Estado)
	}
}

func TestValidateRejectsInvertedTimes(t *testing.T) {
	_, err := Validate(Asignacion{FechaVisita: "2025-06-16", HoraInicio: "13:00", HoraFin: "09:00"})
	if !errors.Is(err, ErrRangoHorario) {
		t.Fatalf("Expected ErrRangoHorario, got %v", err)
	}

	_, err = Validate(Asignacion{FechaVisita: "2025-06-16", HoraInicio: "09:00", HoraFin: "09:00"})
	if !errors.Is(err, ErrRangoHorario) {
		t.Fatalf("Expected ErrRangoHorario for equal times, got %v", err)
	}
}

func TestValidateRejectsWeekend(t *testing.T) {
	for _, fecha := range []string{"2025-06-14", "2025-06-15"} { // Saturday, Sunday
		_, err := Validate(Asignacion{FechaVisita: fecha})
		if !errors.Is(err, ErrFinDeSemana) {
			t.Errorf("Expected ErrFinDeSemana for %s, got %v", fecha, err)
		}
	}
}

func TestValidateAcceptsMonday(t *testing.T) {
	v, err := Validate(Asignacion{FechaVisita: "2025-06-16"})
	if err != nil {
		t.Fatalf("Expected no error for Monday, got %v", err)
	}
	if v.FechaVisita != "2025-06-16" {
		t.Errorf("Expected date kept, got %q", v.FechaVisita)
	}
}

func TestValidateRejectsMalformedDate(t *testing.T) {
	for _, fecha := range []string{"16/06/2025", "2025-13-01", "mañana", "2025-06-32"} {
		_, err := Validate(Asignacion{FechaVisita: fecha})
		if !errors.Is(err, ErrFechaInvalida) {
			t.Errorf("Expected ErrFechaInvalida for %q, got %v", fecha, err)
		}
	}
}

func TestValidateRejectsMalformedTime(t *testing.T) {
	_, err := Validate(Asignacion{FechaVisita: "2025-06-16", HoraInicio: "9am"})
	if !errors.Is(err, ErrHoraInvalida) {
		t.Fatalf("Expected ErrHoraInvalida, got %v", err)
	}
	_, err = Validate(Asignacion{FechaVisita: "2025-06-16", HoraFin: "25:00"})
	if !errors.Is(err, ErrHoraInvalida) {
		t.Fatalf("Expected ErrHoraInvalida, got %v", err)
	}
}

func TestDefaultWindow(t *testing.T) {
	if hi, hf, ok := DefaultWindow(model.TurnoManana); !ok || hi != MananaInicio || hf != MananaFin {
		t.Errorf("Expected mañana window %s-%s, got %s-%s (%v)", MananaInicio, MananaFin, hi, hf, ok)
	}
	if hi, hf, ok := DefaultWindow(model.TurnoTarde); !ok || hi != TardeInicio || hf != TardeFin {
		t.Errorf("Expected tarde window %s-%s, got %s-%s (%v)", TardeInicio, TardeFin, hi, hf, ok)
	}
	if _, _, ok := DefaultWindow("noche"); ok {
		t.Error("Expected no window for unknown turno")
	}
}

func TestIsWeekend(t *testing.T) {
	sat, _ := time.Parse("2006-01-02", "2025-06-14")
	mon, _ := time.Parse("2006-01-02", "2025-06-16")
	if !IsWeekend(sat) {
		t.Error("Expected Saturday to be weekend")
	}
	if IsWeekend(mon) {
		t.Error("Expected Monday not to be weekend")
	}
}
