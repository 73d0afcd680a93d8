package polyclinic

import (
	"context"

	"medreg/internal/core/id"
)

// Repository defines the interface for polyclinic persistence.
type Repository interface {
	Create(ctx context.Context, p *Polyclinic) error
	GetByID(ctx context.Context, clinicID id.ID) (*Polyclinic, error)
	GetByCode(ctx context.Context, code string) (*Polyclinic, error)
	Update(ctx context.Context, p *Polyclinic) error
	List(ctx context.Context, activeOnly bool) ([]Polyclinic, error)
}
