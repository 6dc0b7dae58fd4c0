package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service keeps the current catalog snapshot and refreshes it from the repository.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	current  atomic.Pointer[Snapshot]
	loadedAt atomic.Int64
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	s := &Service{repo: repo, logger: logger.With().Str("component", "catalog").Logger()}
	s.current.Store(NewSnapshot(nil, nil))
	return s
}

// Snapshot returns the snapshot a single calculation should read from.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// LoadedAt is the time of the last successful reload, zero if never loaded.
func (s *Service) LoadedAt() time.Time {
	ns := s.loadedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// Reload fetches the catalog and atomically replaces the current snapshot.
// On error the previous snapshot stays in place.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	formulas, err := s.repo.LoadFormulas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load formulas: %w", err)
	}
	modules, err := s.repo.LoadModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	snap := NewSnapshot(formulas, modules)
	s.current.Store(snap)
	s.loadedAt.Store(time.Now().UnixNano())

	nf, nm := snap.Len()
	s.logger.Info().Int("formulas", nf).Int("modules", nm).Msg("catalog reloaded")
	return snap, nil
}

// Run reloads the catalog every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reload(ctx); err != nil {
				s.logger.Error().Err(err).Msg("catalog reload failed")
			}
		}
	}
}

func (s *Service) GetFormula(id uuid.UUID) (Formula, error) {
	f, ok := s.Snapshot().Formula(id)
	if !ok {
		return Formula{}, ErrNotFound
	}
	return f, nil
}

func (s *Service) GetModule(id uuid.UUID) (Module, error) {
	m, ok := s.Snapshot().Module(id)
	if !ok {
		return Module{}, ErrNotFound
	}
	return m, nil
}

// ListFormulas returns one page of formulas and the total count.
func (s *Service) ListFormulas(limit, offset int) ([]Formula, int) {
	all := s.Snapshot().Formulas()
	return page(all, limit, offset), len(all)
}

// ListModules returns one page of modules and the total count.
func (s *Service) ListModules(limit, offset int) ([]Module, int) {
	all := s.Snapshot().Modules()
	return page(all, limit, offset), len(all)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
