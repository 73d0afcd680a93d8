// Package doctor provides the practicing doctor catalog.
package doctor

import (
	"context"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// Doctor represents a practicing doctor.
type Doctor struct {
	ID             id.ID     `db:"id" json:"id"`
	LicenseNumber  string    `db:"license_number" json:"licenseNumber"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	PolyclinicID   *id.ID    `db:"polyclinic_id" json:"polyclinicId,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// NewDoctor creates a new active doctor.
func NewDoctor(licenseNumber, name, specialization string) *Doctor {
	now := time.Now()
	return &Doctor{
		ID:             id.New(),
		LicenseNumber:  licenseNumber,
		Name:           name,
		Specialization: specialization,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate implements basic entity validation.
func (d *Doctor) Validate(ctx context.Context) error {
	if d.LicenseNumber == "" {
		return apperror.NewValidation("license number is required").WithDetail("field", "licenseNumber")
	}
	if d.Name == "" {
		return apperror.NewValidation("doctor name is required").WithDetail("field", "name")
	}
	if d.Specialization == "" {
		return apperror.NewValidation("specialization is required").WithDetail("field", "specialization")
	}
	return nil
}
