package polyclinic

import (
	"context"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/core/tx"
	"medreg/pkg/logger"
)

// Service provides business logic for the polyclinic catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a polyclinic service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create creates a new polyclinic.
func (s *Service) Create(ctx context.Context, p *Polyclinic) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, p.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("polyclinic", "code", p.Code)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "polyclinic created", "polyclinic_id", p.ID, "code", p.Code)
	return nil
}

// GetByID retrieves a polyclinic.
func (s *Service) GetByID(ctx context.Context, clinicID id.ID) (*Polyclinic, error) {
	return s.repo.GetByID(ctx, clinicID)
}

// GetByCode retrieves a polyclinic by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Polyclinic, error) {
	return s.repo.GetByCode(ctx, code)
}

// Update rewrites polyclinic fields. The code is immutable once issued:
// queue numbers already printed reference it.
func (s *Service) Update(ctx context.Context, p *Polyclinic) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.Code != p.Code {
		return apperror.NewValidation("polyclinic code cannot be changed").
			WithDetail("field", "code")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, p)
	})
}

// List returns polyclinics.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Polyclinic, error) {
	return s.repo.List(ctx, activeOnly)
}
