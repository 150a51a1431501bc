package model

import "strings"

// Estado values stored in the avisos table. A blank estado is treated as
// pendiente by the read-side queries.
const (
	EstadoSinAsignar  = "sin asignar"
	EstadoPendiente   = "pendiente"
	EstadoRealizado   = "realizado"
	EstadoAnulado     = "anulado"
	EstadoCancelado   = "cancelado"
	EstadoReactivable = "reactivable"
)

const (
	TurnoManana = "mañana"
	TurnoTarde  = "tarde"
)

// Aviso is a work order. All date/time fields are plain strings
// ("2006-01-02" and "15:04"); blank and NULL are equivalent everywhere.
type Aviso struct {
	ID                 int64   `json:"idAviso"`
	OrdenInterna       string  `json:"ordenInterna"`
	Cliente            string  `json:"cliente"`
	Direccion          string  `json:"direccion"`
	Localidad          string  `json:"localidad"`
	CodigoPostal       string  `json:"codigoPostal"`
	Telefono1          string  `json:"telefono1"`
	Telefono2          string  `json:"telefono2"`
	Aparato            string  `json:"aparato"`
	Marca              string  `json:"marca"`
	Modelo             string  `json:"modelo"`
	FechaAsignacion    string  `json:"fechaAsignacion"`
	Averia             string  `json:"averia"`
	TipoServicio       string  `json:"tipoServicio"`
	ConCargo           bool    `json:"conCargo"`
	Importe            float64 `json:"importe"`
	MetodoPago         string  `json:"metodoPago"`
	ObservacionesCobro string  `json:"observacionesCobro"`
	Estado             string  `json:"estado"`
	FechaVisita        string  `json:"fechaVisita"`
	Tecnico            string  `json:"tecnico"`
	Turno              string  `json:"turno"`
	Proveedor          string  `json:"proveedor"`
	EstadoCita         string  `json:"estadoCita"`
	TipoOperacion      string  `json:"tipoOperacion"`
	HoraInicio         string  `json:"horaInicio"`
	HoraFin            string  `json:"horaFin"`
}

// Orden returns the order identifier, which call sites use under both the
// ordenInterna and ordenTrabajo names.
func (a Aviso) Orden() string {
	return Clean(a.OrdenInterna)
}

// Telefono returns the first non-blank phone number.
func (a Aviso) Telefono() string {
	if t := Clean(a.Telefono1); t != "" {
		return t
	}
	return Clean(a.Telefono2)
}

// IsCancelled reports whether the estado marks the aviso as cancelled
// (anulado or the cancelado/reactivable variants).
func IsCancelled(estado string) bool {
	e := strings.ToLower(Clean(estado))
	return strings.HasPrefix(e, "anul") || strings.HasPrefix(e, "canc")
}

// IsPending reports whether the estado counts as awaiting a visit: blank or
// anything starting with "pend".
func IsPending(estado string) bool {
	e := strings.ToLower(Clean(estado))
	return e == "" || strings.HasPrefix(e, "pend")
}

// Clean trims s and collapses inner whitespace. Spreadsheet artifacts
// ("nan", "none", "null", "na") normalize to the empty string.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null", "na":
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}
