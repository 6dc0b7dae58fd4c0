package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Snapshot is an immutable, id-keyed view of the catalog. A calculation reads
// a single snapshot from start to end; refreshing the catalog produces a new one.
type Snapshot struct {
	formulas map[uuid.UUID]Formula
	modules  map[uuid.UUID]Module
}

// NewSnapshot indexes formulas and modules by id. Later duplicates win.
func NewSnapshot(formulas []Formula, modules []Module) *Snapshot {
	s := &Snapshot{
		formulas: make(map[uuid.UUID]Formula, len(formulas)),
		modules:  make(map[uuid.UUID]Module, len(modules)),
	}
	for _, f := range formulas {
		f.Presentations = append([]float64(nil), f.Presentations...)
		s.formulas[f.ID] = f
	}
	for _, m := range modules {
		s.modules[m.ID] = m
	}
	return s
}

// Formula looks up a formula by id.
func (s *Snapshot) Formula(id uuid.UUID) (Formula, bool) {
	if s == nil {
		return Formula{}, false
	}
	f, ok := s.formulas[id]
	if ok {
		f.Presentations = append([]float64(nil), f.Presentations...)
	}
	return f, ok
}

// Module looks up a module by id.
func (s *Snapshot) Module(id uuid.UUID) (Module, bool) {
	if s == nil {
		return Module{}, false
	}
	m, ok := s.modules[id]
	return m, ok
}

// Formulas returns all formulas sorted by name, then id.
func (s *Snapshot) Formulas() []Formula {
	if s == nil {
		return nil
	}
	out := make([]Formula, 0, len(s.formulas))
	for id := range s.formulas {
		f, _ := s.Formula(id)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Name, out[j].Name, out[i].ID, out[j].ID)
	})
	return out
}

// Modules returns all modules sorted by name, then id.
func (s *Snapshot) Modules() []Module {
	if s == nil {
		return nil
	}
	out := make([]Module, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Name, out[j].Name, out[i].ID, out[j].ID)
	})
	return out
}

// Len returns the number of formulas and modules.
func (s *Snapshot) Len() (formulas, modules int) {
	if s == nil {
		return 0, 0
	}
	return len(s.formulas), len(s.modules)
}

func lessByName(a, b string, ida, idb uuid.UUID) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return ida.String() < idb.String()
}
