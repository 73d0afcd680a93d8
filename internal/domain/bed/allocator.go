package bed

import (
	"context"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/core/tx"
	"medreg/pkg/logger"
)

// Allocator provides exclusive, race-free transitions of a bed between
// available and occupied.
//
// Correctness is delegated entirely to the store's row locks, never to
// in-process mutexes: the real deployment is multiple server processes, so
// only the shared database can serialize them. Every decision is made
// against the status re-read under the lock - a status read before locking
// is never trusted.
type Allocator struct {
	repo      Repository
	txManager tx.Manager
}

// NewAllocator creates a bed allocator.
func NewAllocator(repo Repository, txManager tx.Manager) *Allocator {
	return &Allocator{repo: repo, txManager: txManager}
}

// Allocate transitions a bed from available to occupied.
//
// Runs in one transaction: lock the bed row, re-check status under the lock,
// write occupied. Two concurrent calls on the same bed yield exactly one
// success; the loser gets BED_UNAVAILABLE carrying the status it actually
// observed after the winner's lock released (occupied, never available).
//
// When a transaction is already in the context (inpatient registration
// flow), the allocation joins it, so a failure later in the flow rolls the
// bed back to available.
func (a *Allocator) Allocate(ctx context.Context, bedID id.ID) (*Bed, error) {
	var allocated *Bed

	err := a.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := a.repo.GetForUpdate(ctx, bedID)
		if err != nil {
			return err
		}

		if !b.IsAvailable() {
			return apperror.NewBedUnavailable(b.Number, string(b.Status))
		}

		now := time.Now()
		if err := a.repo.UpdateStatus(ctx, bedID, StatusOccupied, &now); err != nil {
			return err
		}

		b.Status = StatusOccupied
		b.OccupiedAt = &now
		b.UpdatedAt = now
		allocated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bed allocated", "bed_id", bedID, "bed_number", allocated.Number)
	return allocated, nil
}

// Release transitions a bed back to available and clears the occupancy
// timestamp. Releasing an already-available bed is a benign no-op success;
// double discharge must not error at the front desk.
func (a *Allocator) Release(ctx context.Context, bedID id.ID) (*Bed, error) {
	var released *Bed

	err := a.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := a.repo.GetForUpdate(ctx, bedID)
		if err != nil {
			return err
		}

		// maintenance/reserved are administrative states, not the
		// allocator's to clear
		if b.Status == StatusMaintenance || b.Status == StatusReserved {
			return apperror.NewBusinessRule(apperror.CodeBedUnavailable,
				"bed is out of service and cannot be released").
				WithDetail("bed_number", b.Number).
				WithDetail("current_status", string(b.Status))
		}

		if err := a.repo.UpdateStatus(ctx, bedID, StatusAvailable, nil); err != nil {
			return err
		}

		b.Status = StatusAvailable
		b.OccupiedAt = nil
		b.UpdatedAt = time.Now()
		released = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bed released", "bed_id", bedID, "bed_number", released.Number)
	return released, nil
}

// IsAvailable is an advisory, non-locking check for UI pre-filtering.
// It carries no correctness guarantee: the answer can be stale the moment it
// is returned, and committing to a bed always goes through Allocate.
func (a *Allocator) IsAvailable(ctx context.Context, bedID id.ID) (bool, error) {
	b, err := a.repo.GetByID(ctx, bedID)
	if err != nil {
		return false, err
	}
	return b.IsAvailable(), nil
}

// SetServiceStatus moves a bed between available and the administrative
// states (maintenance, reserved). Occupied beds are owned by the allocator
// and refuse administrative transitions until discharged.
func (a *Allocator) SetServiceStatus(ctx context.Context, bedID id.ID, target Status) (*Bed, error) {
	if target != StatusAvailable && target != StatusMaintenance && target != StatusReserved {
		return nil, apperror.NewValidation("invalid target status").
			WithDetail("status", string(target))
	}

	var updated *Bed

	err := a.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := a.repo.GetForUpdate(ctx, bedID)
		if err != nil {
			return err
		}

		if b.IsOccupied() {
			return apperror.NewBusinessRule(apperror.CodeBedOccupied,
				"occupied bed cannot be taken out of service").
				WithDetail("bed_number", b.Number)
		}

		if err := a.repo.UpdateStatus(ctx, bedID, target, nil); err != nil {
			return err
		}

		b.Status = target
		b.OccupiedAt = nil
		b.UpdatedAt = time.Now()
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bed status changed",
		"bed_id", bedID,
		"bed_number", updated.Number,
		"status", string(updated.Status))
	return updated, nil
}

// AvailableBeds returns all allocatable beds for the inpatient form.
func (a *Allocator) AvailableBeds(ctx context.Context) ([]Bed, error) {
	return a.repo.ListAvailable(ctx)
}

// AvailabilityByWard returns free bed counts per ward for the dashboard.
func (a *Allocator) AvailabilityByWard(ctx context.Context) ([]WardAvailability, error) {
	return a.repo.AvailabilityByWard(ctx)
}
