package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"avisos/internal/model"
	"avisos/internal/scheduling"
)

// AvisoService owns the avisos table: keyed inserts, the query projections
// the list views are built from, and the partial/fixed-shape updates every
// lifecycle transition goes through.
type AvisoService struct {
	db *sql.DB
}

func NewAvisoService(db *sql.DB) *AvisoService {
	return &AvisoService{db: db}
}

const avisoColumns = `
	id, orden_interna, COALESCE(cliente,''), COALESCE(direccion,''),
	COALESCE(localidad,''), COALESCE(codigo_postal,''),
	COALESCE(telefono1,''), COALESCE(telefono2,''),
	COALESCE(aparato,''), COALESCE(marca,''), COALESCE(modelo,''),
	COALESCE(fecha_asignacion,''), COALESCE(averia,''),
	COALESCE(tipo_servicio,''), COALESCE(con_cargo, FALSE), importe,
	COALESCE(metodo_pago,''), COALESCE(observaciones_cobro,''),
	COALESCE(estado,''), COALESCE(fecha_visita,''), COALESCE(tecnico,''),
	COALESCE(turno,''), COALESCE(proveedor,''), COALESCE(estado_cita,''),
	COALESCE(tipo_operacion,''), COALESCE(hora_inicio,''), COALESCE(hora_fin,'')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAviso(row rowScanner) (model.Aviso, error) {
	var a model.Aviso
	var importe sql.NullFloat64
	err := row.Scan(
		&a.ID, &a.OrdenInterna, &a.Cliente, &a.Direccion,
		&a.Localidad, &a.CodigoPostal,
		&a.Telefono1, &a.Telefono2,
		&a.Aparato, &a.Marca, &a.Modelo,
		&a.FechaAsignacion, &a.Averia,
		&a.TipoServicio, &a.ConCargo, &importe,
		&a.MetodoPago, &a.ObservacionesCobro,
		&a.Estado, &a.FechaVisita, &a.Tecnico,
		&a.Turno, &a.Proveedor, &a.EstadoCita,
		&a.TipoOperacion, &a.HoraInicio, &a.HoraFin,
	)
	if err != nil {
		return model.Aviso{}, err
	}
	if importe.Valid {
		a.Importe = importe.Float64
	}
	return a, nil
}

func (s *AvisoService) queryAvisos(ctx context.Context, query string, args ...any) ([]model.Aviso, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query avisos: %w", err)
	}
	defer rows.Close()

	var avisos []model.Aviso
	for rows.Next() {
		a, err := scanAviso(rows)
		if err != nil {
			return nil, fmt.Errorf("scan aviso: %w", err)
		}
		avisos = append(avisos, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return avisos, nil
}

// Insert creates a new aviso. A duplicate orden_interna is skipped silently
// at the table and reported as ErrDuplicateOrden, never overwritten.
func (s *AvisoService) Insert(ctx context.Context, a model.Aviso) error {
	orden := a.Orden()
	if orden == "" {
		return ErrMissingIdentifier
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO avisos (
			orden_interna, cliente, direccion, localidad, codigo_postal,
			telefono1, telefono2, aparato, marca, modelo,
			fecha_asignacion, averia, tipo_servicio, con_cargo, importe,
			metodo_pago, observaciones_cobro, estado, fecha_visita, tecnico,
			turno, proveedor, estado_cita, tipo_operacion, hora_inicio, hora_fin
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		ON CONFLICT (orden_interna) DO NOTHING`,
		orden, a.Cliente, a.Direccion, a.Localidad, a.CodigoPostal,
		a.Telefono1, a.Telefono2, a.Aparato, a.Marca, a.Modelo,
		a.FechaAsignacion, a.Averia, a.TipoServicio, a.ConCargo, a.Importe,
		a.MetodoPago, a.ObservacionesCobro, a.Estado, a.FechaVisita, a.Tecnico,
		a.Turno, a.Proveedor, a.EstadoCita, a.TipoOperacion, a.HoraInicio, a.HoraFin,
	)
	if err != nil {
		return fmt.Errorf("insert aviso: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert aviso: %w", err)
	}
	if n == 0 {
		return ErrDuplicateOrden
	}
	return nil
}

// GetByOrden fetches a single aviso by its order number.
func (s *AvisoService) GetByOrden(ctx context.Context, orden string) (*model.Aviso, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+avisoColumns+` FROM avisos WHERE orden_interna = $1`, orden)
	a, err := scanAviso(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAvisoNotFound
		}
		return nil, fmt.Errorf("get aviso: %w", err)
	}
	return &a, nil
}

func (s *AvisoService) fetchCurrent(ctx context.Context, hasID bool, id, orden any) (model.Aviso, error) {
	var row *sql.Row
	if hasID {
		row = s.db.QueryRowContext(ctx,
			`SELECT`+avisoColumns+` FROM avisos WHERE id = $1`, id)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT`+avisoColumns+` FROM avisos WHERE orden_interna = $1`, orden)
	}
	a, err := scanAviso(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Aviso{}, ErrAvisoNotFound
		}
		return model.Aviso{}, fmt.Errorf("get aviso: %w", err)
	}
	return a, nil
}

// ListByDate returns every aviso whose visit date equals fecha, ordered by
// start time ascending.
func (s *AvisoService) ListByDate(ctx context.Context, fecha string) ([]model.Aviso, error) {
	return s.queryAvisos(ctx,
		`SELECT`+avisoColumns+` FROM avisos WHERE fecha_visita = $1 ORDER BY hora_inicio ASC`, fecha)
}

// ListPending returns avisos awaiting a visit: estado blank or starting with
// "pend", dated or not, ordered by (visit date, start time) ascending.
func (s *AvisoService) ListPending(ctx context.Context) ([]model.Aviso, error) {
	return s.queryAvisos(ctx, `
		SELECT`+avisoColumns+`
		FROM avisos
		WHERE estado IS NULL OR TRIM(estado) = '' OR LOWER(estado) LIKE 'pend%'
		ORDER BY COALESCE(fecha_visita,'') ASC, COALESCE(hora_inicio,'') ASC`)
}

// ListUnscheduled returns avisos with no visit date, ordered by order number
// ascending.
func (s *AvisoService) ListUnscheduled(ctx context.Context) ([]model.Aviso, error) {
	return s.queryAvisos(ctx, `
		SELECT`+avisoColumns+`
		FROM avisos
		WHERE fecha_visita IS NULL OR TRIM(COALESCE(fecha_visita, '')) = ''
		ORDER BY orden_interna ASC`)
}

// ListAll returns the full set, newest visit first.
func (s *AvisoService) ListAll(ctx context.Context) ([]model.Aviso, error) {
	return s.queryAvisos(ctx,
		`SELECT`+avisoColumns+` FROM avisos ORDER BY COALESCE(fecha_visita,'') DESC, COALESCE(hora_inicio,'') DESC`)
}

// ScheduledDates returns every distinct non-blank visit date, sorted.
func (s *AvisoService) ScheduledDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT fecha_visita
		FROM avisos
		WHERE fecha_visita IS NOT NULL AND TRIM(fecha_visita) <> ''`)
	if err != nil {
		return nil, fmt.Errorf("query fechas: %w", err)
	}
	defer rows.Close()

	var fechas []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan fecha: %w", err)
		}
		fechas = append(fechas, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	sort.Strings(fechas)
	return fechas, nil
}

// updatableColumns maps the external field names accepted by Update to their
// columns. Keys not present here are dropped from the payload.
var updatableColumns = map[string]string{
	"ordenInterna":       "orden_interna",
	"cliente":            "cliente",
	"direccion":          "direccion",
	"localidad":          "localidad",
	"codigoPostal":       "codigo_postal",
	"telefono1":          "telefono1",
	"telefono2":          "telefono2",
	"aparato":            "aparato",
	"marca":              "marca",
	"modelo":             "modelo",
	"fechaAsignacion":    "fecha_asignacion",
	"averia":             "averia",
	"tipoServicio":       "tipo_servicio",
	"conCargo":           "con_cargo",
	"importe":            "importe",
	"metodoPago":         "metodo_pago",
	"observacionesCobro": "observaciones_cobro",
	"estado":             "estado",
	"fechaVisita":        "fecha_visita",
	"tecnico":            "tecnico",
	"turno":              "turno",
	"proveedor":          "proveedor",
	"estadoCita":         "estado_cita",
	"tipoOperacion":      "tipo_operacion",
	"horaInicio":         "hora_inicio",
	"horaFin":            "hora_fin",
}

// NormalizeUpdatePayload resolves the field aliases used by the loose
// importer schema and the edit surfaces, then drops everything that is not a
// real column: ordenTrabajo becomes ordenInterna (without clobbering one
// already present), a bare telefono becomes telefono1 when neither phone is
// set, poblacion becomes localidad, and notas/observaciones become
// observacionesCobro.
func NormalizeUpdatePayload(datos map[string]any) map[string]any {
	if datos == nil {
		return map[string]any{}
	}
	d := make(map[string]any, len(datos))
	for k, v := range datos {
		d[k] = v
	}

	if v, ok := d["ordenTrabajo"]; ok {
		if _, exists := d["ordenInterna"]; !exists {
			d["ordenInterna"] = v
		}
		delete(d, "ordenTrabajo")
	}
	if v, ok := d["telefono"]; ok {
		_, t1 := d["telefono1"]
		_, t2 := d["telefono2"]
		if !t1 && !t2 {
			d["telefono1"] = v
		}
		delete(d, "telefono")
	}
	if v, ok := d["poblacion"]; ok {
		if _, exists := d["localidad"]; !exists {
			d["localidad"] = v
		}
		delete(d, "poblacion")
	}
	for _, alias := range []string{"notas", "observaciones"} {
		if v, ok := d[alias]; ok {
			if _, exists := d["observacionesCobro"]; !exists {
				d["observacionesCobro"] = v
			}
			delete(d, alias)
		}
	}

	out := make(map[string]any, len(d))
	for k, v := range d {
		if _, ok := updatableColumns[k]; ok || k == "idAviso" {
			out[k] = v
		}
	}
	return out
}

// schedulingFields are the payload keys that route an Update through the
// assignment validator.
var schedulingFields = []string{"fechaVisita", "turno", "horaInicio", "horaFin"}

func touchesScheduling(payload map[string]any) bool {
	for _, f := range schedulingFields {
		if _, ok := payload[f]; ok {
			return true
		}
	}
	return false
}

func stringField(payload map[string]any, key, fallback string) string {
	v, ok := payload[key]
	if !ok {
		return fallback
	}
	s, _ := v.(string)
	return s
}

// applySchedulingRules merges the touched scheduling fields over the stored
// record and runs the tuple through the validator, so the quick edit obeys
// the same rules as the assign endpoints. The validated tuple replaces the
// touched fields; a blank resulting date also drops the technician and
// forces estado sin asignar, the same shape ClearScheduling writes.
func applySchedulingRules(payload map[string]any, current model.Aviso) error {
	v, err := scheduling.Validate(scheduling.Asignacion{
		FechaVisita: stringField(payload, "fechaVisita", current.FechaVisita),
		Turno:       stringField(payload, "turno", current.Turno),
		HoraInicio:  stringField(payload, "horaInicio", current.HoraInicio),
		HoraFin:     stringField(payload, "horaFin", current.HoraFin),
		Tecnico:     stringField(payload, "tecnico", current.Tecnico),
	})
	if err != nil {
		return err
	}

	payload["fechaVisita"] = v.FechaVisita
	payload["turno"] = v.Turno
	payload["horaInicio"] = v.HoraInicio
	payload["horaFin"] = v.HoraFin
	if v.FechaVisita == "" {
		payload["tecnico"] = ""
		payload["estado"] = model.EstadoSinAsignar
	}
	return nil
}

// Update applies only the supplied fields to the aviso identified by idAviso
// or ordenInterna (ordenTrabajo resolves to the latter). A payload with no
// identifier fails; a payload with an identifier but nothing to change is a
// no-op. Touching any scheduling field sends the merged tuple through the
// assignment validator first.
func (s *AvisoService) Update(ctx context.Context, datos map[string]any) error {
	payload := NormalizeUpdatePayload(datos)

	idAviso, hasID := payload["idAviso"]
	orden, hasOrden := payload["ordenInterna"]
	if !hasID && !hasOrden {
		return ErrMissingIdentifier
	}

	if touchesScheduling(payload) {
		current, err := s.fetchCurrent(ctx, hasID, idAviso, orden)
		if err != nil {
			return err
		}
		if err := applySchedulingRules(payload, current); err != nil {
			return err
		}
	}

	var campos []string
	for k := range payload {
		if k == "idAviso" || k == "ordenInterna" {
			continue
		}
		campos = append(campos, k)
	}
	if len(campos) == 0 {
		return nil
	}
	sort.Strings(campos)

	set := make([]string, 0, len(campos))
	args := make([]any, 0, len(campos)+1)
	for i, c := range campos {
		set = append(set, fmt.Sprintf("%s = $%d", updatableColumns[c], i+1))
		args = append(args, payload[c])
	}

	var where string
	if hasID {
		where = fmt.Sprintf("id = $%d", len(args)+1)
		args = append(args, idAviso)
	} else {
		where = fmt.Sprintf("orden_interna = $%d", len(args)+1)
		args = append(args, orden)
	}

	query := fmt.Sprintf("UPDATE avisos SET %s WHERE %s", strings.Join(set, ", "), where)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update aviso: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update aviso: %w", err)
	}
	if n == 0 {
		return ErrAvisoNotFound
	}
	return nil
}

// UpdateScheduling is the fixed-shape scheduling write: it always overwrites
// the five scheduling fields, even to NULL, and touches cliente only when a
// value is supplied.
func (s *AvisoService) UpdateScheduling(ctx context.Context, orden string, cliente, horaInicio, horaFin, tecnico, turno, fechaVisita *string) error {
	if orden == "" {
		return ErrMissingIdentifier
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE avisos
		SET cliente = COALESCE($1, cliente),
		    hora_inicio = $2,
		    hora_fin = $3,
		    tecnico = $4,
		    turno = $5,
		    fecha_visita = $6
		WHERE orden_interna = $7`,
		cliente, horaInicio, horaFin, tecnico, turno, fechaVisita, orden,
	)
	if err != nil {
		return fmt.Errorf("update scheduling: %w", err)
	}
	return checkFound(res)
}

// MarkScheduled moves a blank or sin-asignar estado to pendiente once a date
// is on the record. Terminal estados are left alone.
func (s *AvisoService) MarkScheduled(ctx context.Context, orden string) error {
	if orden == "" {
		return ErrMissingIdentifier
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE avisos SET estado = $1
		WHERE orden_interna = $2
		  AND (estado IS NULL OR TRIM(estado) = '' OR LOWER(estado) = $3)`,
		model.EstadoPendiente, orden, model.EstadoSinAsignar,
	)
	if err != nil {
		return fmt.Errorf("mark scheduled: %w", err)
	}
	return nil
}

// MarkDone sets estado to realizado. No other field is touched.
func (s *AvisoService) MarkDone(ctx context.Context, orden string) error {
	return s.setEstado(ctx, orden, model.EstadoRealizado)
}

// MarkCancelled sets estado to anulado. A non-blank reason is appended to
// the billing notes as " | Anulado: <reason>", never replacing them.
func (s *AvisoService) MarkCancelled(ctx context.Context, orden, motivo string) error {
	if orden == "" {
		return ErrMissingIdentifier
	}
	motivo = model.Clean(motivo)
	if motivo == "" {
		return s.setEstado(ctx, orden, model.EstadoAnulado)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE avisos
		SET estado = $1,
		    observaciones_cobro = TRIM(COALESCE(observaciones_cobro, '') || ' | Anulado: ' || $2)
		WHERE orden_interna = $3`,
		model.EstadoAnulado, motivo, orden,
	)
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	return checkFound(res)
}

// MarkReinstated reverts a cancelled aviso to pendiente. Scheduling fields
// cleared earlier are not restored.
func (s *AvisoService) MarkReinstated(ctx context.Context, orden string) error {
	return s.setEstado(ctx, orden, model.EstadoPendiente)
}

// ClearScheduling nulls the date, turno, both times and the technician, and
// sets estado to sin asignar.
func (s *AvisoService) ClearScheduling(ctx context.Context, orden string) error {
	if orden == "" {
		return ErrMissingIdentifier
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE avisos
		SET fecha_visita = NULL, turno = NULL, hora_inicio = NULL, hora_fin = NULL,
		    tecnico = NULL, estado = $1
		WHERE orden_interna = $2`,
		model.EstadoSinAsignar, orden,
	)
	if err != nil {
		return fmt.Errorf("clear scheduling: %w", err)
	}
	return checkFound(res)
}

func (s *AvisoService) setEstado(ctx context.Context, orden, estado string) error {
	if orden == "" {
		return ErrMissingIdentifier
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE avisos SET estado = $1 WHERE orden_interna = $2`, estado, orden)
	if err != nil {
		return fmt.Errorf("set estado: %w", err)
	}
	return checkFound(res)
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrAvisoNotFound
	}
	return nil
}
