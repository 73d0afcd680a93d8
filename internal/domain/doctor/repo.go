package doctor

import (
	"context"

	"medreg/internal/core/id"
)

// Repository defines the interface for doctor persistence.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, doctorID id.ID) (*Doctor, error)
	GetByLicense(ctx context.Context, licenseNumber string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, activeOnly bool) ([]Doctor, error)
	ListByPolyclinic(ctx context.Context, clinicID id.ID) ([]Doctor, error)
}
