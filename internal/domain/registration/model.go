// Package registration provides outpatient and inpatient registration
// workflows. This is where sequence numbers and bed allocation compose into
// single transactions.
package registration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// Type of registration.
type Type string

const (
	TypeOutpatient Type = "outpatient"
	TypeInpatient  Type = "inpatient"
)

// Status of a registration.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentMethod values.
type PaymentMethod string

const (
	PaymentBPJS      PaymentMethod = "BPJS"
	PaymentCash      PaymentMethod = "cash"
	PaymentInsurance PaymentMethod = "insurance"
)

// Registration represents one front-desk registration.
//
// Number is RJ-YYYYMMDD-NNNN (outpatient) or RI-YYYYMMDD-NNNN (inpatient).
// Outpatient registrations additionally carry a per-clinic queue number
// OP-YYYYMMDD-CODE-NNN; inpatient registrations carry the allocated bed.
type Registration struct {
	ID               id.ID           `db:"id" json:"id"`
	Number           string          `db:"registration_number" json:"number"`
	PatientID        id.ID           `db:"patient_id" json:"patientId"`
	DoctorID         id.ID           `db:"doctor_id" json:"doctorId"`
	UserID           id.ID           `db:"user_id" json:"userId"`
	Type             Type            `db:"type" json:"type"`
	PolyclinicID     *id.ID          `db:"polyclinic_id" json:"polyclinicId,omitempty"`
	QueueNumber      *string         `db:"queue_number" json:"queueNumber,omitempty"`
	BedID            *id.ID          `db:"bed_id" json:"bedId,omitempty"`
	AdmissionDate    *time.Time      `db:"admission_date" json:"admissionDate,omitempty"`
	DischargeDate    *time.Time      `db:"discharge_date" json:"dischargeDate,omitempty"`
	RegistrationDate time.Time       `db:"registration_date" json:"registrationDate"`
	PaymentMethod    PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	Fee              decimal.Decimal `db:"fee" json:"fee"`
	Complaint        *string         `db:"complaint" json:"complaint,omitempty"`
	Diagnosis        *string         `db:"diagnosis" json:"diagnosis,omitempty"`
	Status           Status          `db:"status" json:"status"`
	Notes            *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

// Validate implements basic entity validation.
func (r *Registration) Validate(ctx context.Context) error {
	if id.IsNil(r.PatientID) {
		return apperror.NewValidation("patient is required").WithDetail("field", "patientId")
	}
	if id.IsNil(r.DoctorID) {
		return apperror.NewValidation("doctor is required").WithDetail("field", "doctorId")
	}
	switch r.PaymentMethod {
	case PaymentBPJS, PaymentCash, PaymentInsurance:
	default:
		return apperror.NewValidation("invalid payment method").WithDetail("value", string(r.PaymentMethod))
	}
	if r.Fee.IsNegative() {
		return apperror.NewValidation("fee must not be negative").WithDetail("field", "fee")
	}
	switch r.Type {
	case TypeOutpatient:
		if r.PolyclinicID == nil {
			return apperror.NewValidation("polyclinic is required for outpatient registration").
				WithDetail("field", "polyclinicId")
		}
	case TypeInpatient:
		if r.BedID == nil {
			return apperror.NewValidation("bed is required for inpatient registration").
				WithDetail("field", "bedId")
		}
	default:
		return apperror.NewValidation("invalid registration type").WithDetail("value", string(r.Type))
	}
	return nil
}

// IsActive returns true while the registration is waiting or in progress.
func (r *Registration) IsActive() bool {
	return r.Status == StatusWaiting || r.Status == StatusInProgress
}
