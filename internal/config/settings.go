package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Horario values for the settings document.
const (
	HorarioInvierno = "invierno"
	HorarioVerano   = "verano"
)

// Settings is the small persisted key-value document the desktop app kept in
// assets/config.json. An absent file means the invierno defaults.
type Settings struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// LoadSettings reads the settings file, tolerating its absence.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("horario", HorarioInvierno)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		// no file yet, defaults apply
	}

	return &Settings{v: v, path: path}, nil
}

// Horario returns the current horario setting.
func (s *Settings) Horario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.v.GetString("horario")
	if h != HorarioVerano {
		return HorarioInvierno
	}
	return h
}

// ToggleHorario flips invierno<->verano and persists the document.
func (s *Settings) ToggleHorario() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := HorarioVerano
	if s.v.GetString("horario") == HorarioVerano {
		next = HorarioInvierno
	}
	s.v.Set("horario", next)

	if err := s.write(); err != nil {
		return "", err
	}
	return next, nil
}

func (s *Settings) write() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
