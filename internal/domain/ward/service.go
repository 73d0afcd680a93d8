package ward

import (
	"context"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/core/tx"
	"medreg/internal/domain/bed"
	"medreg/pkg/logger"
)

// Service provides ward administration, including the bed inventory of each
// ward. Bed occupancy itself is owned by bed.Allocator; this service only
// creates/retires beds and hands administrative status changes through.
type Service struct {
	repo      Repository
	bedRepo   bed.Repository
	allocator *bed.Allocator
	txManager tx.Manager
}

// NewService creates a ward service.
func NewService(repo Repository, bedRepo bed.Repository, allocator *bed.Allocator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		bedRepo:   bedRepo,
		allocator: allocator,
		txManager: txManager,
	}
}

// Create creates a new ward.
func (s *Service) Create(ctx context.Context, w *Ward) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, w.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("ward", "code", w.Code)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, w)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "ward created", "ward_id", w.ID, "code", w.Code)
	return nil
}

// GetByID retrieves a ward.
func (s *Service) GetByID(ctx context.Context, wardID id.ID) (*Ward, error) {
	return s.repo.GetByID(ctx, wardID)
}

// Update rewrites ward fields.
func (s *Service) Update(ctx context.Context, w *Ward) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, w)
	})
}

// List returns wards.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Ward, error) {
	return s.repo.List(ctx, activeOnly)
}

// AddBed creates a new available bed in a ward.
func (s *Service) AddBed(ctx context.Context, wardID id.ID, number string, notes *string) (*bed.Bed, error) {
	if _, err := s.repo.GetByID(ctx, wardID); err != nil {
		return nil, err
	}

	b := bed.NewBed(wardID, number)
	b.Notes = notes
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.bedRepo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bed created", "ward_id", wardID, "bed_number", number)
	return b, nil
}

// Beds lists the beds of a ward.
func (s *Service) Beds(ctx context.Context, wardID id.ID) ([]bed.Bed, error) {
	return s.bedRepo.ListByWard(ctx, wardID)
}

// AvailableBeds lists free beds across all wards, for the admission form.
// Advisory only: admission re-checks the bed under lock.
func (s *Service) AvailableBeds(ctx context.Context) ([]bed.Bed, error) {
	return s.allocator.AvailableBeds(ctx)
}

// SetBedStatus performs an administrative bed transition
// (available/maintenance/reserved). Refused for occupied beds.
func (s *Service) SetBedStatus(ctx context.Context, bedID id.ID, status bed.Status) (*bed.Bed, error) {
	return s.allocator.SetServiceStatus(ctx, bedID, status)
}

// RemoveBed deletes a bed. Only beds that are not occupied can be removed.
func (s *Service) RemoveBed(ctx context.Context, bedID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.bedRepo.GetForUpdate(ctx, bedID)
		if err != nil {
			return err
		}
		if b.IsOccupied() {
			return apperror.NewBusinessRule(apperror.CodeBedOccupied,
				"occupied bed cannot be removed").
				WithDetail("bed_number", b.Number)
		}
		return s.bedRepo.Delete(ctx, bedID)
	})
}
