package handler

import (
	"io"
	"net/http"
	"strings"

	"avisos/internal/importer"
	"avisos/internal/service"
)

const maxImportSize = 20 << 20 // 20 MiB

// ImportHandler ingests an xlsx upload. The file arrives either as the
// "file" part of a multipart form or as the raw request body. Duplicate
// ordenes are skipped; the response reports the counts.
func ImportHandler(avisoSvc *service.AvisoService, cal *service.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var src io.Reader = http.MaxBytesReader(w, r.Body, maxImportSize)

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(maxImportSize); err != nil {
				http.Error(w, "invalid multipart form", http.StatusBadRequest)
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file part required", http.StatusBadRequest)
				return
			}
			defer file.Close()
			src = file
		}

		res, err := importer.Import(r.Context(), avisoSvc, src)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		refreshCalendar(r, cal)
		writeJSON(w, http.StatusOK, res)
	}
}
