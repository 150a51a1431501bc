package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"avisos/internal/model"
)

func TestNormalize(t *testing.T) {
	a := model.Aviso{
		ID:                 7,
		OrdenInterna:       " OT-7 ",
		Cliente:            "Ana",
		Telefono1:          "911222333",
		Telefono2:          " 600111222 ",
		ObservacionesCobro: "pagado en efectivo",
		CodigoPostal:       "28001",
	}
	n := Normalize(a)
	if n.Orden != "OT-7" || n.Cliente != "Ana" || n.CP != "28001" {
		t.Fatalf("Unexpected normalization: %+v", n)
	}
	if !reflect.DeepEqual(n.Telefonos, []string{"911222333", "600111222"}) {
		t.Errorf("Expected both phones, got %v", n.Telefonos)
	}
	if n.Notas != "pagado en efectivo" {
		t.Errorf("Expected observacionesCobro surfaced as notas, got %q", n.Notas)
	}
}

func TestNormalizeSkipsBlankPhones(t *testing.T) {
	n := Normalize(model.Aviso{Telefono1: "nan", Telefono2: ""})
	if len(n.Telefonos) != 0 {
		t.Fatalf("Expected no phones, got %v", n.Telefonos)
	}
}

func TestBuildExportGrouping(t *testing.T) {
	avisos := []model.Aviso{
		{OrdenInterna: "1", FechaVisita: "2025-06-16", Turno: "mañana"},
		{OrdenInterna: "2", FechaVisita: "2025-06-16", Turno: "Tarde"},
		{OrdenInterna: "3", FechaVisita: "2025-06-16", Turno: ""},
		{OrdenInterna: "4", FechaVisita: "2025-06-17", Turno: "manana"},
		{OrdenInterna: "5", FechaVisita: ""},
	}
	now, _ := time.Parse(time.RFC3339, "2025-06-18T10:30:00Z")
	p := BuildExport(avisos, now)

	if p.Version != 1 {
		t.Errorf("Expected version 1, got %d", p.Version)
	}
	if p.Total != 5 {
		t.Errorf("Expected total 5, got %d", p.Total)
	}
	if p.GeneratedAt != "2025-06-18T10:30:00Z" {
		t.Errorf("Unexpected generated_at %q", p.GeneratedAt)
	}
	if len(p.Dias) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(p.Dias))
	}

	d16 := p.Dias["2025-06-16"]
	if len(d16.Manana) != 1 || d16.Manana[0].Orden != "1" {
		t.Errorf("Expected orden 1 in mañana, got %+v", d16.Manana)
	}
	if len(d16.Tarde) != 1 || d16.Tarde[0].Orden != "2" {
		t.Errorf("Expected orden 2 in tarde, got %+v", d16.Tarde)
	}
	if len(d16.SinTurno) != 1 || d16.SinTurno[0].Orden != "3" {
		t.Errorf("Expected orden 3 in sin_turno, got %+v", d16.SinTurno)
	}

	// ASCII "manana" still counts as mañana via the "ma" prefix.
	if len(p.Dias["2025-06-17"].Manana) != 1 {
		t.Errorf("Expected ASCII manana bucketed as mañana")
	}

	if len(p.SinFecha) != 1 || p.SinFecha[0].Orden != "5" {
		t.Errorf("Expected orden 5 in sin_fecha, got %+v", p.SinFecha)
	}
}

func TestExportJSONFieldNames(t *testing.T) {
	p := BuildExport([]model.Aviso{{OrdenInterna: "1", FechaVisita: "2025-06-16", Turno: "mañana"}}, time.Now())
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"version"`, `"generated_at"`, `"total"`, `"dias"`, `"mañana"`, `"sin_turno"`, `"telefonos"`, `"estadoCita"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected key %s in export JSON", key)
		}
	}
	if strings.Contains(string(data), `"sin_fecha"`) {
		t.Error("Expected sin_fecha omitted when empty")
	}
}

func TestWriteCSVPlanner(t *testing.T) {
	var buf bytes.Buffer
	avisos := []model.Aviso{{
		OrdenInterna: "OT-1", Cliente: "Ana", Direccion: "Calle Sol 3",
		HoraInicio: "09:00", HoraFin: "13:00", Turno: "mañana",
		Tecnico: "Pedro", Telefono1: "600111222", Estado: "pendiente",
		TipoOperacion: "reparación",
	}}
	if err := WriteCSVPlanner(&buf, avisos); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected header plus one row, got %d records", len(recs))
	}
	if recs[0][0] != "orden" || len(recs[0]) != 10 {
		t.Errorf("Unexpected header: %v", recs[0])
	}
	want := []string{"OT-1", "Ana", "Calle Sol 3", "09:00", "13:00", "mañana", "Pedro", "600111222", "pendiente", "reparación"}
	if !reflect.DeepEqual(recs[1], want) {
		t.Errorf("Expected row %v, got %v", want, recs[1])
	}
}

func TestWriteCSVPending(t *testing.T) {
	var buf bytes.Buffer
	avisos := []model.Aviso{{OrdenInterna: "OT-2", Cliente: "Luis", Telefono2: "911000111"}}
	if err := WriteCSVPending(&buf, avisos); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || len(recs[0]) != 6 {
		t.Fatalf("Expected 6-column header plus one row, got %v", recs)
	}
	if recs[1][0] != "OT-2" || recs[1][3] != "911000111" {
		t.Errorf("Unexpected row: %v", recs[1])
	}
}
