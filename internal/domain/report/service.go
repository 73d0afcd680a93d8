package report

import (
	"context"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/tx"
)

// Service assembles reports from the read-side repository. Every report runs
// in a read-only transaction so all numbers inside it come from one snapshot.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a report service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Daily returns the summary for one day.
func (s *Service) Daily(ctx context.Context, day time.Time) (*DailySummary, error) {
	var out *DailySummary
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		summary, err := s.repo.DailySummary(ctx, day)
		if err != nil {
			return err
		}
		out = summary
		return nil
	})
	return out, err
}

// Queues returns per-polyclinic queue state for one day.
func (s *Service) Queues(ctx context.Context, day time.Time) ([]QueueSummary, error) {
	var out []QueueSummary
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		queues, err := s.repo.QueuesByPolyclinic(ctx, day)
		if err != nil {
			return err
		}
		out = queues
		return nil
	})
	return out, err
}

// Occupancy returns current bed usage per ward.
func (s *Service) Occupancy(ctx context.Context) ([]OccupancySummary, error) {
	var out []OccupancySummary
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		occ, err := s.repo.OccupancyByWard(ctx)
		if err != nil {
			return err
		}
		out = occ
		return nil
	})
	return out, err
}

// Revenue returns revenue grouped by payment method over [from, to].
func (s *Service) Revenue(ctx context.Context, from, to time.Time) ([]RevenueByMethod, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("date range is inverted").
			WithDetail("from", from.Format("2006-01-02")).
			WithDetail("to", to.Format("2006-01-02"))
	}

	var out []RevenueByMethod
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		rev, err := s.repo.RevenueByMethod(ctx, from, to)
		if err != nil {
			return err
		}
		out = rev
		return nil
	})
	return out, err
}

// Dashboard assembles the landing page payload in one snapshot.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := time.Now()

	var out Dashboard
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		today, err := s.repo.DailySummary(ctx, now)
		if err != nil {
			return err
		}
		queues, err := s.repo.QueuesByPolyclinic(ctx, now)
		if err != nil {
			return err
		}
		occ, err := s.repo.OccupancyByWard(ctx)
		if err != nil {
			return err
		}
		out = Dashboard{Today: *today, Queues: queues, Occupancy: occ}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
