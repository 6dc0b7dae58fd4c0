package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/nutrition/internal/domain/catalog"
	"github.com/ehr/nutrition/internal/domain/nutrition"
)

// SnapshotSource hands out the catalog snapshot a single computation reads.
type SnapshotSource interface {
	Snapshot() *catalog.Snapshot
}

// Transactor runs fn in a transaction carried by ctx.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo    Repository
	catalog SnapshotSource
	cfg     nutrition.Config
	logger  zerolog.Logger
	tx      Transactor
	now     func() time.Time
}

func NewService(repo Repository, cat SnapshotSource, cfg nutrition.Config, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		cfg:     cfg,
		logger:  logger.With().Str("component", "prescription").Logger(),
		now:     time.Now,
	}
}

// SetTransactor makes Update read and write the row in one transaction.
func (s *Service) SetTransactor(tx Transactor) {
	s.tx = tx
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.InTx(ctx, fn)
}

// Calculate computes a draft without saving it. The draft does not have to be
// complete: missing pieces show up as warnings.
func (s *Service) Calculate(d *nutrition.Draft, p nutrition.Patient) (nutrition.Result, error) {
	if d == nil {
		return nutrition.Result{}, fmt.Errorf("%w: draft is required", ErrValidation)
	}
	res := nutrition.Compute(d, s.catalog.Snapshot(), p, s.cfg)
	s.logWarnings(uuid.Nil, d.PatientID, res.Warnings)
	return res, nil
}

func (s *Service) Create(ctx context.Context, rx *Prescription) error {
	if err := s.prepare(rx); err != nil {
		return err
	}
	if rx.Status == "" {
		rx.Status = StatusDraft
	}
	if err := s.repo.Create(ctx, rx); err != nil {
		return fmt.Errorf("create prescription: %w", err)
	}
	s.logWarnings(rx.ID, rx.PatientID, rx.Result.Warnings)
	return nil
}

// Update replaces the draft, patient data and status of a saved prescription
// and recomputes its result.
func (s *Service) Update(ctx context.Context, rx *Prescription) error {
	err := s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, rx.ID)
		if err != nil {
			return err
		}
		if err := s.prepare(rx); err != nil {
			return err
		}
		if rx.Status == "" {
			rx.Status = existing.Status
		}
		rx.CreatedAt = existing.CreatedAt
		if err := s.repo.Update(ctx, rx); err != nil {
			return fmt.Errorf("update prescription: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logWarnings(rx.ID, rx.PatientID, rx.Result.Warnings)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if patientID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// RecordText renders the chart note of a saved prescription against the
// current catalog.
func (s *Service) RecordText(ctx context.Context, id uuid.UUID) (string, error) {
	rx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.recompute(rx).RecordText, nil
}

// Requisition builds the pharmacy requisition workbook of a saved prescription.
func (s *Service) Requisition(ctx context.Context, id uuid.UUID) ([]byte, error) {
	rx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildRequisition(rx, s.recompute(rx), s.now())
}

// prepare validates the draft and derives the stored fields from it.
func (s *Service) prepare(rx *Prescription) error {
	if err := rx.Draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if rx.Status != "" && !validStatuses[rx.Status] {
		return fmt.Errorf("%w: invalid status: %s", ErrValidation, rx.Status)
	}
	rx.PatientID = rx.Draft.PatientID
	res := s.recompute(rx)
	rx.Result = &res
	return nil
}

func (s *Service) recompute(rx *Prescription) nutrition.Result {
	return nutrition.Compute(&rx.Draft, s.catalog.Snapshot(), rx.Patient, s.cfg)
}

func (s *Service) logWarnings(rxID, patientID uuid.UUID, warns []nutrition.Warning) {
	for _, w := range warns {
		evt := s.logger.Debug()
		if w.Kind == nutrition.KindDataIntegrity {
			evt = s.logger.Warn()
		}
		evt = evt.Str("code", w.Code).Str("ref", w.Ref).Str("patient_id", patientID.String())
		if rxID != uuid.Nil {
			evt = evt.Str("prescription_id", rxID.String())
		}
		evt.Msg(w.Message)
	}
}
