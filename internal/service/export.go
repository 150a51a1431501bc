package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"avisos/internal/model"
)

// AvisoExport is the normalized order object consumed by the mobile app.
// Field names are part of the export contract and must not change.
type AvisoExport struct {
	ID            int64    `json:"id"`
	Orden         string   `json:"orden"`
	Cliente       string   `json:"cliente"`
	Direccion     string   `json:"direccion"`
	Localidad     string   `json:"localidad"`
	CP            string   `json:"cp"`
	Telefonos     []string `json:"telefonos"`
	Aparato       string   `json:"aparato"`
	Marca         string   `json:"marca"`
	Modelo        string   `json:"modelo"`
	Averia        string   `json:"averia"`
	TipoServicio  string   `json:"tipoServicio"`
	TipoOperacion string   `json:"tipoOperacion"`
	ConCargo      bool     `json:"conCargo"`
	Importe       float64  `json:"importe"`
	MetodoPago    string   `json:"metodoPago"`
	Notas         string   `json:"notas"`
	Estado        string   `json:"estado"`
	FechaVisita   string   `json:"fechaVisita"`
	Turno         string   `json:"turno"`
	Tecnico       string   `json:"tecnico"`
	HoraInicio    string   `json:"horaInicio"`
	HoraFin       string   `json:"horaFin"`
	Proveedor     string   `json:"proveedor"`
	EstadoCita    string   `json:"estadoCita"`
}

// Normalize converts a stored aviso to its export shape: phones collapse
// into one list and the billing notes surface as "notas".
func Normalize(a model.Aviso) AvisoExport {
	var telefonos []string
	for _, t := range []string{a.Telefono1, a.Telefono2} {
		if t = model.Clean(t); t != "" {
			telefonos = append(telefonos, t)
		}
	}
	return AvisoExport{
		ID:            a.ID,
		Orden:         a.Orden(),
		Cliente:       model.Clean(a.Cliente),
		Direccion:     model.Clean(a.Direccion),
		Localidad:     model.Clean(a.Localidad),
		CP:            model.Clean(a.CodigoPostal),
		Telefonos:     telefonos,
		Aparato:       model.Clean(a.Aparato),
		Marca:         model.Clean(a.Marca),
		Modelo:        model.Clean(a.Modelo),
		Averia:        model.Clean(a.Averia),
		TipoServicio:  model.Clean(a.TipoServicio),
		TipoOperacion: model.Clean(a.TipoOperacion),
		ConCargo:      a.ConCargo,
		Importe:       a.Importe,
		MetodoPago:    model.Clean(a.MetodoPago),
		Notas:         model.Clean(a.ObservacionesCobro),
		Estado:        model.Clean(a.Estado),
		FechaVisita:   model.Clean(a.FechaVisita),
		Turno:         model.Clean(a.Turno),
		Tecnico:       model.Clean(a.Tecnico),
		HoraInicio:    model.Clean(a.HoraInicio),
		HoraFin:       model.Clean(a.HoraFin),
		Proveedor:     model.Clean(a.Proveedor),
		EstadoCita:    model.Clean(a.EstadoCita),
	}
}

// DiaTurnos buckets one day's avisos by shift.
type DiaTurnos struct {
	Manana   []AvisoExport `json:"mañana"`
	Tarde    []AvisoExport `json:"tarde"`
	SinTurno []AvisoExport `json:"sin_turno"`
}

// ExportPayload is the full JSON export: avisos nested by date then shift,
// with undated ones in their own bucket.
type ExportPayload struct {
	Version     int                   `json:"version"`
	GeneratedAt string                `json:"generated_at"`
	Total       int                   `json:"total"`
	Dias        map[string]*DiaTurnos `json:"dias"`
	SinFecha    []AvisoExport         `json:"sin_fecha,omitempty"`
}

// BuildExport groups avisos by day and turno. A turno starting "ma" counts
// as mañana, "ta" as tarde, anything else lands in sin_turno.
func BuildExport(avisos []model.Aviso, now time.Time) ExportPayload {
	payload := ExportPayload{
		Version:     1,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Total:       len(avisos),
		Dias:        map[string]*DiaTurnos{},
	}

	for _, a := range avisos {
		nav := Normalize(a)
		if nav.FechaVisita == "" {
			payload.SinFecha = append(payload.SinFecha, nav)
			continue
		}
		dia, ok := payload.Dias[nav.FechaVisita]
		if !ok {
			dia = &DiaTurnos{
				Manana:   []AvisoExport{},
				Tarde:    []AvisoExport{},
				SinTurno: []AvisoExport{},
			}
			payload.Dias[nav.FechaVisita] = dia
		}
		switch turno := strings.ToLower(nav.Turno); {
		case strings.HasPrefix(turno, "ma"):
			dia.Manana = append(dia.Manana, nav)
		case strings.HasPrefix(turno, "ta"):
			dia.Tarde = append(dia.Tarde, nav)
		default:
			dia.SinTurno = append(dia.SinTurno, nav)
		}
	}

	return payload
}

// WriteCSVPlanner writes the day-planner CSV projection.
func WriteCSVPlanner(w io.Writer, avisos []model.Aviso) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"orden", "cliente", "direccion", "horaInicio", "horaFin", "turno", "tecnico", "telefono", "estado", "tipoOperacion"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range avisos {
		rec := []string{
			a.Orden(), model.Clean(a.Cliente), model.Clean(a.Direccion),
			model.Clean(a.HoraInicio), model.Clean(a.HoraFin),
			model.Clean(a.Turno), model.Clean(a.Tecnico), a.Telefono(),
			model.Clean(a.Estado), model.Clean(a.TipoOperacion),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVPending writes the unscheduled-list CSV projection.
func WriteCSVPending(w io.Writer, avisos []model.Aviso) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"orden", "cliente", "direccion", "telefono", "tipoOperacion", "estado"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range avisos {
		rec := []string{
			a.Orden(), model.Clean(a.Cliente), model.Clean(a.Direccion),
			a.Telefono(), model.Clean(a.TipoOperacion), model.Clean(a.Estado),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
