package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"avisos/internal/model"
	"avisos/internal/scheduling"
)

// DatesProvider is the slice of the store the availability index reads.
type DatesProvider interface {
	ScheduledDates(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]model.Aviso, error)
}

// Day buckets for the calendar window, in strict precedence order: a
// weekend or festivo always wins over "has avisos".
const (
	DayFestivo   = "festivo"
	DayConAvisos = "con_avisos"
	DayLibre     = "libre"
)

// The display window around today, matching the calendar widget this index
// was built for.
const (
	WindowBefore = 10
	WindowAfter  = 15
)

// CalendarService derives the set of dates that have at least one aviso.
// Refresh is the only mutation path: the set is fully recomputed from the
// store, never updated incrementally.
type CalendarService struct {
	store    DatesProvider
	festivos map[string]struct{}
	fechas   map[string]struct{}
}

func NewCalendarService(store DatesProvider, festivos []string) *CalendarService {
	fs := make(map[string]struct{}, len(festivos))
	for _, f := range festivos {
		if f = model.Clean(f); f != "" {
			fs[f] = struct{}{}
		}
	}
	return &CalendarService{
		store:    store,
		festivos: fs,
		fechas:   map[string]struct{}{},
	}
}

// Refresh recomputes the dates-with-avisos set. Callers must invoke it after
// any write that could add or remove a scheduled date.
func (s *CalendarService) Refresh(ctx context.Context) error {
	fechas, err := s.store.ScheduledDates(ctx)
	if err != nil {
		return fmt.Errorf("refresh calendar: %w", err)
	}
	set := make(map[string]struct{}, len(fechas))
	for _, f := range fechas {
		if f = model.Clean(f); f != "" {
			set[f] = struct{}{}
		}
	}
	s.fechas = set
	return nil
}

// HasAvisos reports whether fecha has at least one aviso, per the last
// Refresh.
func (s *CalendarService) HasAvisos(fecha string) bool {
	_, ok := s.fechas[fecha]
	return ok
}

// Classify buckets one date: weekend or festivo first, then has-avisos,
// then free.
func (s *CalendarService) Classify(fecha string) string {
	if _, ok := s.festivos[fecha]; ok {
		return DayFestivo
	}
	if t, err := time.Parse("2006-01-02", fecha); err == nil && scheduling.IsWeekend(t) {
		return DayFestivo
	}
	if s.HasAvisos(fecha) {
		return DayConAvisos
	}
	return DayLibre
}

// DayInfo is one classified date of the display window.
type DayInfo struct {
	Fecha string `json:"fecha"`
	Kind  string `json:"tipo"`
}

// Window classifies every date from today-10 to today+15 inclusive.
func (s *CalendarService) Window(today time.Time) []DayInfo {
	days := make([]DayInfo, 0, WindowBefore+WindowAfter+1)
	for off := -WindowBefore; off <= WindowAfter; off++ {
		fecha := today.AddDate(0, 0, off).Format("2006-01-02")
		days = append(days, DayInfo{Fecha: fecha, Kind: s.Classify(fecha)})
	}
	return days
}

// DatesFromAvisos derives the scheduled-date set by scanning avisos for
// non-blank visit dates. It is the fallback for stores without a distinct
// query and must agree with ScheduledDates for any store content.
func DatesFromAvisos(avisos []model.Aviso) map[string]struct{} {
	set := make(map[string]struct{})
	for _, a := range avisos {
		if f := model.Clean(a.FechaVisita); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// LoadFestivos reads the external holiday list: a JSON array of YYYY-MM-DD
// strings. A missing file means no festivos.
func LoadFestivos(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read festivos: %w", err)
	}

	var fechas []string
	if err := json.Unmarshal(data, &fechas); err != nil {
		return nil, fmt.Errorf("parse festivos: %w", err)
	}

	out := fechas[:0]
	for _, f := range fechas {
		if f = model.Clean(f); f != "" && scheduling.ValidFecha(f) {
			out = append(out, f)
		}
	}
	return out, nil
}
