package service

import (
	"sort"
	"strconv"
	"strings"

	"avisos/internal/model"
)

// Read-side projections for the list views. These are pure functions over
// slices so every surface filters the same way; they re-run on each query
// and cache nothing.

// FilterEstado applies the state filter. With a blank filter, cancelled
// avisos (estado starting "anul" or "canc") are hidden; an explicit filter
// requires an exact case-insensitive match instead.
func FilterEstado(avisos []model.Aviso, estado string) []model.Aviso {
	estado = strings.ToLower(model.Clean(estado))
	var out []model.Aviso
	for _, a := range avisos {
		e := strings.ToLower(model.Clean(a.Estado))
		if estado == "" {
			if model.IsCancelled(e) {
				continue
			}
		} else if e != estado {
			continue
		}
		out = append(out, a)
	}
	return out
}

// FilterTexto keeps avisos where any of orden, cliente, direccion,
// tipoOperacion or the phones contains q (case-insensitive). The day view
// passes includeTecnico to extend the match to the technician.
func FilterTexto(avisos []model.Aviso, q string, includeTecnico bool) []model.Aviso {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return avisos
	}
	var out []model.Aviso
	for _, a := range avisos {
		fields := []string{
			a.Orden(), model.Clean(a.Cliente), model.Clean(a.Direccion),
			model.Clean(a.TipoOperacion), a.Telefono(),
		}
		if includeTecnico {
			fields = append(fields, model.Clean(a.Tecnico))
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// FilterTurno keeps avisos on the exact turno; blank keeps everything.
func FilterTurno(avisos []model.Aviso, turno string) []model.Aviso {
	turno = model.Clean(turno)
	if turno == "" {
		return avisos
	}
	var out []model.Aviso
	for _, a := range avisos {
		if model.Clean(a.Turno) == turno {
			out = append(out, a)
		}
	}
	return out
}

// FilterTecnico keeps avisos assigned to the exact technician; blank keeps
// everything.
func FilterTecnico(avisos []model.Aviso, tecnico string) []model.Aviso {
	tecnico = model.Clean(tecnico)
	if tecnico == "" {
		return avisos
	}
	var out []model.Aviso
	for _, a := range avisos {
		if model.Clean(a.Tecnico) == tecnico {
			out = append(out, a)
		}
	}
	return out
}

// Tecnicos returns the distinct non-blank technicians in avisos, sorted.
func Tecnicos(avisos []model.Aviso) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, a := range avisos {
		t := model.Clean(a.Tecnico)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MergeUnscheduled is the fallback derivation of the unscheduled view for
// stores without a direct blank-date query: the pending list unioned with
// every blank-date aviso from the full list, deduplicated by id (or orden
// when the id is zero). It must return the same set as ListUnscheduled.
func MergeUnscheduled(pendientes, todos []model.Aviso) []model.Aviso {
	seen := map[string]struct{}{}
	key := func(a model.Aviso) string {
		if a.ID != 0 {
			return "#" + strconv.FormatInt(a.ID, 10)
		}
		return a.Orden()
	}

	var out []model.Aviso
	for _, a := range pendientes {
		if model.Clean(a.FechaVisita) != "" {
			continue
		}
		k := key(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	for _, a := range todos {
		if model.Clean(a.FechaVisita) != "" {
			continue
		}
		k := key(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Orden() < out[j].Orden() })
	return out
}
