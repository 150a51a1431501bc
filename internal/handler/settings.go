package handler

import (
	"log/slog"
	"net/http"

	"avisos/internal/config"
)

type horarioResponse struct {
	Horario string `json:"horario"`
}

// HorarioHandler serves the persisted horario setting.
func HorarioHandler(settings *config.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, horarioResponse{Horario: settings.Horario()})
	}
}

// ToggleHorarioHandler flips invierno<->verano and persists it.
func ToggleHorarioHandler(settings *config.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		horario, err := settings.ToggleHorario()
		if err != nil {
			slog.Error("toggle horario failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, horarioResponse{Horario: horario})
	}
}
