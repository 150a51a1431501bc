package handler

import (
	"net/http"
	"time"

	"avisos/internal/scheduling"
	"avisos/internal/service"
)

// ExportJSONHandler serves the full store as the nested
// date -> turno -> avisos document the mobile app consumes.
func ExportJSONHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avisos, err := avisoSvc.ListAll(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="todas_las_ordenes.json"`)
		writeJSON(w, http.StatusOK, service.BuildExport(avisos, time.Now()))
	}
}

// ExportCSVHandler serves the CSV projections: vista=planificador needs a
// fecha and exports that day's list; vista=pendientes (the default) exports
// the unscheduled view with cancelled avisos hidden.
func ExportCSVHandler(avisoSvc *service.AvisoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		switch q.Get("vista") {
		case "planificador":
			fecha := q.Get("fecha")
			if !scheduling.ValidFecha(fecha) {
				http.Error(w, "invalid fecha", http.StatusBadRequest)
				return
			}
			avisos, err := avisoSvc.ListByDate(r.Context(), fecha)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="planificador.csv"`)
			if err := service.WriteCSVPlanner(w, avisos); err != nil {
				writeServiceError(w, err)
			}
		default:
			avisos, err := avisoSvc.ListUnscheduled(r.Context())
			if err != nil {
				writeServiceError(w, err)
				return
			}
			avisos = service.FilterEstado(avisos, q.Get("estado"))
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="pendientes.csv"`)
			if err := service.WriteCSVPending(w, avisos); err != nil {
				writeServiceError(w, err)
			}
		}
	}
}
