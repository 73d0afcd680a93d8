package doctor

import (
	"context"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/core/tx"
	"medreg/pkg/logger"
)

// Service provides business logic for the doctor catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a doctor service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create creates a new doctor.
func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByLicense(ctx, d.LicenseNumber); err == nil && existing != nil {
		return apperror.NewDuplicate("doctor", "license number", d.LicenseNumber)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, d)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "doctor created", "doctor_id", d.ID, "license", d.LicenseNumber)
	return nil
}

// GetByID retrieves a doctor.
func (s *Service) GetByID(ctx context.Context, doctorID id.ID) (*Doctor, error) {
	return s.repo.GetByID(ctx, doctorID)
}

// Update rewrites doctor fields.
func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, d)
	})
}

// List returns doctors.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Doctor, error) {
	return s.repo.List(ctx, activeOnly)
}

// ListByPolyclinic returns doctors practicing in a polyclinic.
func (s *Service) ListByPolyclinic(ctx context.Context, clinicID id.ID) ([]Doctor, error) {
	return s.repo.ListByPolyclinic(ctx, clinicID)
}
