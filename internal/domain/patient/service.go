package patient

import (
	"context"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/core/sequence"
	"medreg/internal/core/tx"
	"medreg/pkg/logger"
)

// Service provides business logic for the patient registry.
type Service struct {
	repo      Repository
	generator sequence.Generator
	txManager tx.Manager
}

// NewService creates a patient service.
func NewService(repo Repository, generator sequence.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		txManager: txManager,
	}
}

// Create registers a new patient. The medical record number is drawn from
// the daily RM counter inside the same transaction as the insert, so an
// aborted create never spends a number.
func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if p.MedicalRecordNumber == "" {
			stamp := sequence.DateStamp(time.Now())
			mrn, _, err := sequence.Issue(ctx, s.generator, sequence.MedicalRecord, stamp, "")
			if err != nil {
				return err
			}
			p.MedicalRecordNumber = mrn
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "patient created",
		"patient_id", p.ID,
		"mrn", p.MedicalRecordNumber)
	return nil
}

// GetByID retrieves a patient.
func (s *Service) GetByID(ctx context.Context, patientID id.ID) (*Patient, error) {
	return s.repo.GetByID(ctx, patientID)
}

// GetByMedicalRecordNumber retrieves a patient by MRN.
func (s *Service) GetByMedicalRecordNumber(ctx context.Context, mrn string) (*Patient, error) {
	if mrn == "" {
		return nil, apperror.NewValidation("medical record number is required")
	}
	return s.repo.GetByMedicalRecordNumber(ctx, mrn)
}

// Update rewrites patient fields. The medical record number is immutable.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.MedicalRecordNumber != p.MedicalRecordNumber {
		return apperror.NewValidation("medical record number cannot be changed").
			WithDetail("field", "medicalRecordNumber")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, p)
	})
}

// Search lists patients matching the filter.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]Patient, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.Search(ctx, filter)
}
