package handler

import (
	"net/http"
	"time"

	"avisos/internal/service"
)

type calendarResponse struct {
	Dias []service.DayInfo `json:"dias"`
}

// CalendarHandler serves the classified display window. The index is
// refreshed on every request so day coloring always reflects the store.
func CalendarHandler(cal *service.CalendarService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cal.Refresh(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, calendarResponse{Dias: cal.Window(time.Now())})
	}
}
