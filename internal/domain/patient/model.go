// Package patient provides the patient registry.
package patient

import (
	"context"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// Gender values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// BloodType values.
type BloodType string

const (
	BloodA       BloodType = "A"
	BloodB       BloodType = "B"
	BloodAB      BloodType = "AB"
	BloodO       BloodType = "O"
	BloodUnknown BloodType = "unknown"
)

// Patient represents a registered patient. MedicalRecordNumber is issued
// once at creation (RM-YYYYMMDD-NNNN) and never changes.
type Patient struct {
	ID                    id.ID     `db:"id" json:"id"`
	MedicalRecordNumber   string    `db:"medical_record_number" json:"medicalRecordNumber"`
	NIK                   *string   `db:"nik" json:"nik,omitempty"`
	Name                  string    `db:"name" json:"name"`
	BirthDate             time.Time `db:"birth_date" json:"birthDate"`
	BirthPlace            *string   `db:"birth_place" json:"birthPlace,omitempty"`
	Gender                Gender    `db:"gender" json:"gender"`
	Address               string    `db:"address" json:"address"`
	Phone                 *string   `db:"phone" json:"phone,omitempty"`
	BloodType             BloodType `db:"blood_type" json:"bloodType"`
	EmergencyContactName  *string   `db:"emergency_contact_name" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string   `db:"emergency_contact_phone" json:"emergencyContactPhone,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// NewPatient creates a patient without a medical record number; the service
// issues one inside the create transaction.
func NewPatient(name string, birthDate time.Time, gender Gender, address string) *Patient {
	now := time.Now()
	return &Patient{
		ID:        id.New(),
		Name:      name,
		BirthDate: birthDate,
		Gender:    gender,
		Address:   address,
		BloodType: BloodUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements basic entity validation.
func (p *Patient) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("patient name is required").WithDetail("field", "name")
	}
	if p.BirthDate.IsZero() {
		return apperror.NewValidation("birth date is required").WithDetail("field", "birthDate")
	}
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return apperror.NewValidation("invalid gender").WithDetail("value", string(p.Gender))
	}
	if p.Address == "" {
		return apperror.NewValidation("address is required").WithDetail("field", "address")
	}
	switch p.BloodType {
	case BloodA, BloodB, BloodAB, BloodO, BloodUnknown:
	default:
		return apperror.NewValidation("invalid blood type").WithDetail("value", string(p.BloodType))
	}
	if p.NIK != nil && len(*p.NIK) != 16 {
		return apperror.NewValidation("NIK must be 16 digits").WithDetail("field", "nik")
	}
	return nil
}

// Age returns the patient's age in full years at the given time.
func (p *Patient) Age(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	if at.YearDay() < p.BirthDate.YearDay() {
		years--
	}
	return years
}
