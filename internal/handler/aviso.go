package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"avisos/internal/model"
	"avisos/internal/scheduling"
	"avisos/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeServiceError maps the core error kinds to HTTP statuses. Validation
// failures are 422, a missing identifier 400, an unknown orden 404, a
// duplicate 409, anything else a storage error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrFechaInvalida),
		errors.Is(err, scheduling.ErrHoraInvalida),
		errors.Is(err, scheduling.ErrFinDeSemana),
		errors.Is(err, scheduling.ErrRangoHorario):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrMissingIdentifier):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrAvisoNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrDuplicateOrden):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("aviso operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ListAvisosHandler serves the full list with the default estado filter and
// the free-text filter.
func ListAvisosHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avisos, err := avisoSvc.ListAll(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		avisos = service.FilterEstado(avisos, r.URL.Query().Get("estado"))
		avisos = service.FilterTexto(avisos, r.URL.Query().Get("q"), false)
		writeJSON(w, http.StatusOK, listResponse(avisos))
	}
}

// ListPendingHandler serves avisos awaiting a visit, dated or not.
func ListPendingHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avisos, err := avisoSvc.ListPending(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		avisos = service.FilterTexto(avisos, r.URL.Query().Get("q"), false)
		writeJSON(w, http.StatusOK, listResponse(avisos))
	}
}

// ListUnscheduledHandler serves the sin-asignar view: avisos without a visit
// date, cancelled ones hidden unless an explicit estado filter asks for them.
func ListUnscheduledHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avisos, err := avisoSvc.ListUnscheduled(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		avisos = service.FilterEstado(avisos, r.URL.Query().Get("estado"))
		avisos = service.FilterTexto(avisos, r.URL.Query().Get("q"), false)
		writeJSON(w, http.StatusOK, listResponse(avisos))
	}
}

type dayResponse struct {
	Fecha    string        `json:"fecha"`
	Total    int           `json:"total"`
	Avisos   []model.Aviso `json:"avisos"`
	Tecnicos []string      `json:"tecnicos"`
}

// DayHandler serves the day planner view with turno, technician and
// free-text filters. The technician list covers the whole day, before
// filtering, so the caller can build its dropdown.
func DayHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fecha := chi.URLParam(r, "fecha")
		if !scheduling.ValidFecha(fecha) {
			http.Error(w, "invalid fecha", http.StatusBadRequest)
			return
		}

		avisos, err := avisoSvc.ListByDate(r.Context(), fecha)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := dayResponse{
			Fecha:    fecha,
			Total:    len(avisos),
			Tecnicos: service.Tecnicos(avisos),
		}

		q := r.URL.Query()
		avisos = service.FilterTurno(avisos, q.Get("turno"))
		avisos = service.FilterTecnico(avisos, q.Get("tecnico"))
		avisos = service.FilterTexto(avisos, q.Get("q"), true)
		resp.Avisos = avisos
		if resp.Avisos == nil {
			resp.Avisos = []model.Aviso{}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type assignRequest struct {
	FechaVisita string `json:"fechaVisita"`
	Turno       string `json:"turno"`
	HoraInicio  string `json:"horaInicio"`
	HoraFin     string `json:"horaFin"`
	Tecnico     string `json:"tecnico"`
}

func (req assignRequest) asignacion() scheduling.Asignacion {
	return scheduling.Asignacion{
		FechaVisita: req.FechaVisita,
		Turno:       req.Turno,
		HoraInicio:  req.HoraInicio,
		HoraFin:     req.HoraFin,
		Tecnico:     req.Tecnico,
	}
}

// AssignHandler schedules one aviso onto a validated date/turno/time tuple.
func AssignHandler(assignSvc *service.AssignService, cal *service.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		orden := chi.URLParam(r, "orden")
		if err := assignSvc.Assign(r.Context(), orden, req.asignacion()); err != nil {
			writeServiceError(w, err)
			return
		}

		refreshCalendar(r, cal)
		w.WriteHeader(http.StatusOK)
	}
}

type bulkAssignRequest struct {
	Ordenes []string `json:"ordenes"`
	assignRequest
}

type bulkAssignResponse struct {
	Applied  int                 `json:"applied"`
	Failures []service.BulkError `json:"failures,omitempty"`
}

// BulkAssignHandler applies one tuple to a selection. Partial failure does
// not abort the batch; failures come back per orden.
func BulkAssignHandler(assignSvc *service.AssignService, cal *service.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkAssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(req.Ordenes) == 0 {
			http.Error(w, "ordenes required", http.StatusBadRequest)
			return
		}

		applied, failures, err := assignSvc.AssignBulk(r.Context(), req.Ordenes, req.asignacion())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		refreshCalendar(r, cal)
		writeJSON(w, http.StatusOK, bulkAssignResponse{Applied: applied, Failures: failures})
	}
}

// UnassignHandler returns an aviso to sin asignar.
func UnassignHandler(assignSvc *service.AssignService, cal *service.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := assignSvc.Unassign(r.Context(), chi.URLParam(r, "orden")); err != nil {
			writeServiceError(w, err)
			return
		}
		refreshCalendar(r, cal)
		w.WriteHeader(http.StatusOK)
	}
}

// DoneHandler marks the visit realizado.
func DoneHandler(assignSvc *service.AssignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := assignSvc.Done(r.Context(), chi.URLParam(r, "orden")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type cancelRequest struct {
	Motivo  string `json:"motivo"`
	Confirm bool   `json:"confirm"`
}

// CancelHandler anula an aviso. The confirm flag stands in for the dialog
// the desktop app showed; the transition never runs without it.
func CancelHandler(assignSvc *service.AssignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if !req.Confirm {
			http.Error(w, "confirmation required", http.StatusBadRequest)
			return
		}

		if err := assignSvc.Cancel(r.Context(), chi.URLParam(r, "orden"), req.Motivo); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// ReinstateHandler desanula an aviso back to pendiente.
func ReinstateHandler(assignSvc *service.AssignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := assignSvc.Reinstate(r.Context(), chi.URLParam(r, "orden")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// UpdateHandler applies a partial edit through the alias map. The orden in
// the path wins when the body carries none.
func UpdateHandler(avisoSvc *service.AvisoService, cal *service.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var datos map[string]any
		if err := json.NewDecoder(r.Body).Decode(&datos); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if datos == nil {
			datos = map[string]any{}
		}
		if _, ok := datos["ordenInterna"]; !ok {
			if _, ok := datos["ordenTrabajo"]; !ok {
				datos["ordenInterna"] = chi.URLParam(r, "orden")
			}
		}

		if err := avisoSvc.Update(r.Context(), datos); err != nil {
			writeServiceError(w, err)
			return
		}
		refreshCalendar(r, cal)
		w.WriteHeader(http.StatusOK)
	}
}

// GetAvisoHandler serves one aviso by orden.
func GetAvisoHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := avisoSvc.GetByOrden(r.Context(), chi.URLParam(r, "orden"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func listResponse(avisos []model.Aviso) []model.Aviso {
	if avisos == nil {
		return []model.Aviso{}
	}
	return avisos
}

func refreshCalendar(r *http.Request, cal *service.CalendarService) {
	if cal == nil {
		return
	}
	if err := cal.Refresh(r.Context()); err != nil {
		slog.Error("calendar refresh failed", "error", err)
	}
}
