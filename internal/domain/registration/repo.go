package registration

import (
	"context"
	"time"

	"medreg/internal/core/id"
)

// ListFilter narrows registration listings.
type ListFilter struct {
	Type         Type
	Status       Status
	PolyclinicID *id.ID
	PatientID    *id.ID

	// Date filters on registration_date (inclusive day bounds).
	DateFrom *time.Time
	DateTo   *time.Time

	Limit  int
	Offset int
}

// Repository defines the interface for registration persistence.
type Repository interface {
	Create(ctx context.Context, r *Registration) error
	GetByID(ctx context.Context, regID id.ID) (*Registration, error)
	GetByNumber(ctx context.Context, number string) (*Registration, error)

	// GetForUpdate locks the registration row for the current transaction.
	// Status transitions (discharge, cancel) decide on the locked row.
	GetForUpdate(ctx context.Context, regID id.ID) (*Registration, error)

	Update(ctx context.Context, r *Registration) error
	List(ctx context.Context, filter ListFilter) ([]Registration, int64, error)

	// ActiveByPatient returns waiting/in_progress registrations for a patient.
	ActiveByPatient(ctx context.Context, patientID id.ID) ([]Registration, error)
}
