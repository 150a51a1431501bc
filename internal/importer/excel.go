// Package importer loads avisos from the dispatch spreadsheets. Two header
// vocabularies exist in the wild: the planner export (ORDEN INTERNA, ORDEN
// TRABAJO, CLIENTE, ...) and the routes sheet fed to the web variant
// (reparacion, NOMBRE, apel1, ...). Both normalize to the same record.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"avisos/internal/model"
	"avisos/internal/scheduling"
	"avisos/internal/service"
)

// Store is the single write the importer needs.
type Store interface {
	Insert(ctx context.Context, a model.Aviso) error
}

// Result counts one import run. Failed carries a per-row description of what
// could not be inserted; duplicates are not failures.
type Result struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

// Import reads the first sheet of an xlsx document and inserts each row.
// Rows whose orden already exists are skipped silently and counted; other
// insert errors are accumulated without aborting the run.
func Import(ctx context.Context, store Store, r io.Reader) (Result, error) {
	var res Result

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return res, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return res, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return res, nil
	}

	header := rows[0]
	for i, row := range rows[1:] {
		aviso, err := MapRow(header, row)
		if err != nil {
			res.Failed = append(res.Failed, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		switch err := store.Insert(ctx, aviso); {
		case err == nil:
			res.Inserted++
		case errors.Is(err, service.ErrDuplicateOrden):
			res.Skipped++
		default:
			res.Failed = append(res.Failed, fmt.Sprintf("%s: %v", aviso.Orden(), err))
		}
	}

	return res, nil
}

// MapRow normalizes one spreadsheet row to an Aviso, detecting which header
// vocabulary is in use. The orden is mandatory; everything else may be
// blank. The scheduling tuple passes through the same validator as the
// assign endpoints: a row without a parseable visit date imports as
// "sin asignar" with turno and times cleared, a valid dated one as
// "pendiente", and a tuple the validator rejects (weekend, inverted times)
// imports date-less rather than dropping the row.
func MapRow(header, row []string) (model.Aviso, error) {
	cells := indexCells(header, row)

	var a model.Aviso
	var err error
	if _, ok := cells["reparacion"]; ok {
		a, err = mapRutasRow(cells)
	} else {
		a, err = mapPlannerRow(cells)
	}
	if err != nil {
		return model.Aviso{}, err
	}
	return validateScheduling(a), nil
}

// validateScheduling runs the row's scheduling tuple through the assignment
// rules. Rejected tuples lose the whole tuple instead of failing the row:
// legacy sheets carry weekend dates, and a date-less sin-asignar aviso can be
// rescheduled while a dropped row is lost.
func validateScheduling(a model.Aviso) model.Aviso {
	v, err := scheduling.Validate(scheduling.Asignacion{
		FechaVisita: a.FechaVisita,
		Turno:       a.Turno,
		HoraInicio:  a.HoraInicio,
		HoraFin:     a.HoraFin,
		Tecnico:     a.Tecnico,
	})
	if err != nil {
		a.FechaVisita, a.Turno, a.HoraInicio, a.HoraFin = "", "", "", ""
	} else {
		a.FechaVisita, a.Turno, a.HoraInicio, a.HoraFin = v.FechaVisita, v.Turno, v.HoraInicio, v.HoraFin
	}
	a.Estado = estadoForImport(a.FechaVisita)
	return a
}

func mapPlannerRow(cells map[string]string) (model.Aviso, error) {
	orden := cells["orden interna"]
	if orden == "" {
		orden = cells["orden trabajo"]
	}
	if orden == "" {
		return model.Aviso{}, fmt.Errorf("missing orden")
	}

	a := model.Aviso{
		OrdenInterna:       orden,
		Cliente:            cells["cliente"],
		Direccion:          cells["direccion"],
		Localidad:          cells["poblacion"],
		Telefono1:          cells["telefono"],
		FechaVisita:        ParseFecha(cells["fecha visita"]),
		HoraInicio:         cells["hora inicio"],
		Turno:              cells["turno"],
		ObservacionesCobro: cells["observaciones"],
	}
	return a, nil
}

func mapRutasRow(cells map[string]string) (model.Aviso, error) {
	orden := cells["reparacion"]
	if orden == "" {
		return model.Aviso{}, fmt.Errorf("missing orden")
	}

	cliente := strings.TrimSpace(cells["nombre"] + " " + cells["apel1"])

	a := model.Aviso{
		OrdenInterna:    orden,
		Cliente:         cliente,
		Direccion:       cells["direccion"],
		Localidad:       cells["localidad"],
		CodigoPostal:    cells["codigopostal"],
		Telefono1:       cells["tele1"],
		Telefono2:       cells["tele2"],
		Aparato:         cells["aparato"],
		Marca:           cells["marca"],
		Modelo:          cells["modelo"],
		FechaAsignacion: cells["fecha1"],
		Averia:          cells["averia2"],
		TipoServicio:    "Recogida",
		FechaVisita:     ParseFecha(cells["fecha1"]),
	}
	return a, nil
}

func estadoForImport(fechaVisita string) string {
	if fechaVisita == "" {
		return model.EstadoSinAsignar
	}
	return model.EstadoPendiente
}

// indexCells maps lowercased header names to cleaned cell values. Short
// rows simply leave trailing columns blank.
func indexCells(header, row []string) map[string]string {
	cells := make(map[string]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		var v string
		if i < len(row) {
			v = model.Clean(row[i])
		}
		cells[h] = v
	}
	return cells
}

// fechaLayouts are the date renderings spreadsheets actually contain.
var fechaLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// ParseFecha turns a spreadsheet date cell into YYYY-MM-DD, or "" when the
// cell is blank or unparseable.
func ParseFecha(s string) string {
	s = model.Clean(s)
	if s == "" {
		return ""
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
