package patient

import (
	"context"

	"medreg/internal/core/id"
)

// SearchFilter narrows patient listings.
type SearchFilter struct {
	// Query matches name or medical record number (substring).
	Query string

	Limit  int
	Offset int
}

// Repository defines the interface for patient persistence.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, patientID id.ID) (*Patient, error)
	GetByMedicalRecordNumber(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Search(ctx context.Context, filter SearchFilter) ([]Patient, int64, error)
}
