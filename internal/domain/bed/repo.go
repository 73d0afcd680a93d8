package bed

import (
	"context"
	"time"

	"medreg/internal/core/id"
)

// Repository defines the interface for bed persistence.
type Repository interface {
	// Create inserts a new bed.
	Create(ctx context.Context, b *Bed) error

	// GetByID retrieves a bed without locking. Advisory reads only.
	GetByID(ctx context.Context, bedID id.ID) (*Bed, error)

	// GetForUpdate retrieves a bed under an exclusive row lock. Must be
	// called inside a transaction; the lock is held until commit/rollback.
	// Status decisions are only valid against the bed returned here.
	GetForUpdate(ctx context.Context, bedID id.ID) (*Bed, error)

	// UpdateStatus writes the status and occupancy timestamp of a bed.
	UpdateStatus(ctx context.Context, bedID id.ID, status Status, occupiedAt *time.Time) error

	// Update rewrites mutable bed fields (number, notes).
	Update(ctx context.Context, b *Bed) error

	// Delete removes a bed. Refused by the service layer unless available.
	Delete(ctx context.Context, bedID id.ID) error

	// ListByWard returns beds of one ward ordered by bed number.
	ListByWard(ctx context.Context, wardID id.ID) ([]Bed, error)

	// ListAvailable returns all available beds ordered by ward and number.
	ListAvailable(ctx context.Context) ([]Bed, error)

	// AvailabilityByWard returns free bed counts grouped by ward.
	AvailabilityByWard(ctx context.Context) ([]WardAvailability, error)
}
