package service

import (
	"reflect"
	"testing"

	"avisos/internal/model"
)

func TestFilterEstadoHidesCancelledByDefault(t *testing.T) {
	avisos := []model.Aviso{
		{OrdenInterna: "1", Estado: "pendiente"},
		{OrdenInterna: "2", Estado: "Anulado"},
		{OrdenInterna: "3", Estado: "cancelado - reactivable"},
		{OrdenInterna: "4", Estado: ""},
		{OrdenInterna: "5", Estado: "realizado"},
	}
	got := FilterEstado(avisos, "")
	if len(got) != 3 {
		t.Fatalf("Expected 3 avisos, got %d", len(got))
	}
	for _, a := range got {
		if a.OrdenInterna == "2" || a.OrdenInterna == "3" {
			t.Errorf("Expected cancelled aviso %s hidden", a.OrdenInterna)
		}
	}
}

func TestFilterEstadoExplicitMatch(t *testing.T) {
	avisos := []model.Aviso{
		{OrdenInterna: "1", Estado: "Anulado"},
		{OrdenInterna: "2", Estado: "pendiente"},
	}
	got := FilterEstado(avisos, "anulado")
	if len(got) != 1 || got[0].OrdenInterna != "1" {
		t.Fatalf("Expected only the anulado aviso, got %v", got)
	}
}

func TestFilterTexto(t *testing.T) {
	avisos := []model.Aviso{
		{OrdenInterna: "OT-1", Cliente: "María García"},
		{OrdenInterna: "OT-2", Direccion: "Calle Mayor 5"},
		{OrdenInterna: "OT-3", Telefono1: "600123456"},
		{OrdenInterna: "OT-4", Tecnico: "Pedro"},
	}

	if got := FilterTexto(avisos, "garcía", false); len(got) != 1 || got[0].OrdenInterna != "OT-1" {
		t.Errorf("Expected match on cliente, got %v", got)
	}
	if got := FilterTexto(avisos, "mayor", false); len(got) != 1 || got[0].OrdenInterna != "OT-2" {
		t.Errorf("Expected match on direccion, got %v", got)
	}
	if got := FilterTexto(avisos, "600123", false); len(got) != 1 || got[0].OrdenInterna != "OT-3" {
		t.Errorf("Expected match on telefono, got %v", got)
	}
	if got := FilterTexto(avisos, "pedro", false); len(got) != 0 {
		t.Errorf("Expected tecnico excluded without includeTecnico, got %v", got)
	}
	if got := FilterTexto(avisos, "pedro", true); len(got) != 1 || got[0].OrdenInterna != "OT-4" {
		t.Errorf("Expected match on tecnico with includeTecnico, got %v", got)
	}
	if got := FilterTexto(avisos, "  ", false); len(got) != len(avisos) {
		t.Errorf("Expected blank query to keep everything, got %d", len(got))
	}
}

func TestFilterTurnoAndTecnico(t *testing.T) {
	avisos := []model.Aviso{
		{OrdenInterna: "1", Turno: "mañana", Tecnico: "Pedro"},
		{OrdenInterna: "2", Turno: "tarde", Tecnico: "Luis"},
		{OrdenInterna: "3", Turno: "", Tecnico: "Pedro"},
	}
	if got := FilterTurno(avisos, "mañana"); len(got) != 1 || got[0].OrdenInterna != "1" {
		t.Errorf("Expected one mañana aviso, got %v", got)
	}
	if got := FilterTurno(avisos, ""); len(got) != 3 {
		t.Errorf("Expected blank turno filter to keep everything, got %d", len(got))
	}
	if got := FilterTecnico(avisos, "Pedro"); len(got) != 2 {
		t.Errorf("Expected two avisos for Pedro, got %d", len(got))
	}
}

func TestTecnicos(t *testing.T) {
	avisos := []model.Aviso{
		{Tecnico: "Pedro"},
		{Tecnico: " Luis "},
		{Tecnico: "Pedro"},
		{Tecnico: ""},
		{Tecnico: "nan"},
	}
	got := Tecnicos(avisos)
	want := []string{"Luis", "Pedro"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestMergeUnscheduled(t *testing.T) {
	pendientes := []model.Aviso{
		{ID: 1, OrdenInterna: "B", FechaVisita: ""},
		{ID: 2, OrdenInterna: "C", FechaVisita: "2025-06-16"}, // scheduled, dropped
	}
	todos := []model.Aviso{
		{ID: 1, OrdenInterna: "B", FechaVisita: ""}, // duplicate of pendientes[0]
		{ID: 3, OrdenInterna: "A", FechaVisita: "  "},
		{ID: 4, OrdenInterna: "D", FechaVisita: "2025-06-17"},
	}
	got := MergeUnscheduled(pendientes, todos)
	if len(got) != 2 {
		t.Fatalf("Expected 2 avisos, got %d", len(got))
	}
	if got[0].OrdenInterna != "A" || got[1].OrdenInterna != "B" {
		t.Errorf("Expected [A B] sorted by orden, got [%s %s]", got[0].OrdenInterna, got[1].OrdenInterna)
	}
}

func TestMergeUnscheduledDedupByOrdenWhenNoID(t *testing.T) {
	pendientes := []model.Aviso{{OrdenInterna: "X"}}
	todos := []model.Aviso{{OrdenInterna: "X"}, {OrdenInterna: "Y"}}
	got := MergeUnscheduled(pendientes, todos)
	if len(got) != 2 {
		t.Fatalf("Expected 2 avisos, got %d", len(got))
	}
}
