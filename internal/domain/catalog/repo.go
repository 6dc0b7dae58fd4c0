package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Repository is the read-only source the catalog snapshot is built from.
type Repository interface {
	LoadFormulas(ctx context.Context) ([]Formula, error)
	LoadModules(ctx context.Context) ([]Module, error)
}

// Document is the on-disk JSON shape of a catalog export.
type Document struct {
	Formulas []Formula `json:"formulas"`
	Modules  []Module  `json:"modules"`
}

// LoadFile reads a catalog Document from a JSON file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	for i := range doc.Formulas {
		a, err := ParseAvailability(string(doc.Formulas[i].System))
		if err != nil {
			return nil, fmt.Errorf("formula %s: %w", doc.Formulas[i].ID, err)
		}
		doc.Formulas[i].System = a
	}
	return NewSnapshot(doc.Formulas, doc.Modules), nil
}

// MemoryRepo serves a catalog held in memory. Replace swaps its contents.
type MemoryRepo struct {
	mu       sync.RWMutex
	formulas []Formula
	modules  []Module
}

// NewInMemoryRepo returns a Repository over the given records.
func NewInMemoryRepo(formulas []Formula, modules []Module) *MemoryRepo {
	return &MemoryRepo{formulas: formulas, modules: modules}
}

// Replace swaps the served records, simulating a catalog update upstream.
func (r *MemoryRepo) Replace(formulas []Formula, modules []Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formulas = formulas
	r.modules = modules
}

func (r *MemoryRepo) LoadFormulas(_ context.Context) ([]Formula, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Formula(nil), r.formulas...), nil
}

func (r *MemoryRepo) LoadModules(_ context.Context) ([]Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.modules...), nil
}
