package service

import (
	"errors"
	"reflect"
	"testing"

	"avisos/internal/model"
	"avisos/internal/scheduling"
)

func TestNormalizeUpdatePayloadAliases(t *testing.T) {
	got := NormalizeUpdatePayload(map[string]any{
		"ordenTrabajo": "OT-9",
		"telefono":     "600111222",
		"poblacion":    "Getafe",
		"notas":        "llamar antes",
	})
	want := map[string]any{
		"ordenInterna":       "OT-9",
		"telefono1":          "600111222",
		"localidad":          "Getafe",
		"observacionesCobro": "llamar antes",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestNormalizeUpdatePayloadCanonicalWins(t *testing.T) {
	got := NormalizeUpdatePayload(map[string]any{
		"ordenInterna": "OT-1",
		"ordenTrabajo": "OT-2",
		"localidad":    "Madrid",
		"poblacion":    "Getafe",
	})
	if got["ordenInterna"] != "OT-1" {
		t.Errorf("Expected canonical ordenInterna kept, got %v", got["ordenInterna"])
	}
	if got["localidad"] != "Madrid" {
		t.Errorf("Expected canonical localidad kept, got %v", got["localidad"])
	}
}

func TestNormalizeUpdatePayloadTelefonoSkippedWhenPhonesSet(t *testing.T) {
	got := NormalizeUpdatePayload(map[string]any{
		"telefono":  "111",
		"telefono2": "222",
	})
	if _, ok := got["telefono1"]; ok {
		t.Errorf("Expected bare telefono dropped when a phone is set, got %v", got)
	}
	if got["telefono2"] != "222" {
		t.Errorf("Expected telefono2 kept, got %v", got)
	}
}

func TestNormalizeUpdatePayloadDropsUnknownFields(t *testing.T) {
	got := NormalizeUpdatePayload(map[string]any{
		"idAviso":  int64(3),
		"cliente":  "Ana",
		"__evil":   "DROP TABLE",
		"not_real": 1,
	})
	want := map[string]any{"idAviso": int64(3), "cliente": "Ana"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestNormalizeUpdatePayloadNil(t *testing.T) {
	got := NormalizeUpdatePayload(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("Expected empty map, got %v", got)
	}
}

func TestNormalizeUpdatePayloadDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"notas": "x"}
	NormalizeUpdatePayload(in)
	if _, ok := in["notas"]; !ok {
		t.Fatal("Expected input map untouched")
	}
}

func TestTouchesScheduling(t *testing.T) {
	for _, key := range []string{"fechaVisita", "turno", "horaInicio", "horaFin"} {
		if !touchesScheduling(map[string]any{key: ""}) {
			t.Errorf("Expected %s to count as a scheduling field", key)
		}
	}
	if touchesScheduling(map[string]any{"cliente": "Ana", "tecnico": "Pedro"}) {
		t.Error("Expected non-scheduling payload to pass through untouched")
	}
}

func TestApplySchedulingRulesRejectsWeekendEdit(t *testing.T) {
	payload := map[string]any{"fechaVisita": "2025-06-14"} // Saturday
	err := applySchedulingRules(payload, model.Aviso{OrdenInterna: "OT-1"})
	if !errors.Is(err, scheduling.ErrFinDeSemana) {
		t.Fatalf("Expected ErrFinDeSemana, got %v", err)
	}
}

func TestApplySchedulingRulesRejectsMalformedDateEdit(t *testing.T) {
	payload := map[string]any{"fechaVisita": "14/06/2025"}
	err := applySchedulingRules(payload, model.Aviso{})
	if !errors.Is(err, scheduling.ErrFechaInvalida) {
		t.Fatalf("Expected ErrFechaInvalida, got %v", err)
	}
}

func TestApplySchedulingRulesBlankDateClearsTuple(t *testing.T) {
	current := model.Aviso{
		FechaVisita: "2025-06-16",
		Turno:       "mañana",
		HoraInicio:  "09:00",
		HoraFin:     "13:00",
		Tecnico:     "Pedro",
		Estado:      model.EstadoPendiente,
	}
	payload := map[string]any{"fechaVisita": ""}
	if err := applySchedulingRules(payload, current); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, key := range []string{"fechaVisita", "turno", "horaInicio", "horaFin", "tecnico"} {
		if payload[key] != "" {
			t.Errorf("Expected %s cleared, got %v", key, payload[key])
		}
	}
	if payload["estado"] != model.EstadoSinAsignar {
		t.Errorf("Expected estado forced to sin asignar, got %v", payload["estado"])
	}
}

func TestApplySchedulingRulesMergesOverCurrent(t *testing.T) {
	// Editing only the turno on a dated aviso must validate the merged tuple
	// and apply the default window over its blank times.
	current := model.Aviso{FechaVisita: "2025-06-16", Tecnico: "Pedro"}
	payload := map[string]any{"turno": "tarde"}
	if err := applySchedulingRules(payload, current); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if payload["fechaVisita"] != "2025-06-16" || payload["turno"] != "tarde" {
		t.Errorf("Unexpected merge: %v", payload)
	}
	if payload["horaInicio"] != "15:00" || payload["horaFin"] != "19:00" {
		t.Errorf("Expected default tarde window, got %v-%v", payload["horaInicio"], payload["horaFin"])
	}
	if _, ok := payload["estado"]; ok {
		t.Error("Expected estado untouched for a dated edit")
	}
}

func TestApplySchedulingRulesInvertedTimesEdit(t *testing.T) {
	current := model.Aviso{FechaVisita: "2025-06-16", HoraInicio: "09:00"}
	payload := map[string]any{"horaFin": "08:00"}
	err := applySchedulingRules(payload, current)
	if !errors.Is(err, scheduling.ErrRangoHorario) {
		t.Fatalf("Expected ErrRangoHorario, got %v", err)
	}
}
