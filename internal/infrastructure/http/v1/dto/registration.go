package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"medreg/internal/core/id"
	"medreg/internal/domain/registration"
)

// RegisterOutpatientRequest for the outpatient registration form.
type RegisterOutpatientRequest struct {
	PatientID     string          `json:"patientId" binding:"required,uuid"`
	DoctorID      string          `json:"doctorId" binding:"required,uuid"`
	PolyclinicID  string          `json:"polyclinicId" binding:"required,uuid"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=BPJS cash insurance"`
	Fee           decimal.Decimal `json:"fee"`
	Complaint     string          `json:"complaint,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// ToRequest converts to the domain request.
func (r *RegisterOutpatientRequest) ToRequest() (registration.OutpatientRequest, error) {
	patientID, err := id.Parse(r.PatientID)
	if err != nil {
		return registration.OutpatientRequest{}, err
	}
	doctorID, err := id.Parse(r.DoctorID)
	if err != nil {
		return registration.OutpatientRequest{}, err
	}
	clinicID, err := id.Parse(r.PolyclinicID)
	if err != nil {
		return registration.OutpatientRequest{}, err
	}
	return registration.OutpatientRequest{
		PatientID:     patientID,
		DoctorID:      doctorID,
		PolyclinicID:  clinicID,
		PaymentMethod: registration.PaymentMethod(r.PaymentMethod),
		Fee:           r.Fee,
		Complaint:     r.Complaint,
		Notes:         r.Notes,
	}, nil
}

// RegisterInpatientRequest for the inpatient admission form.
type RegisterInpatientRequest struct {
	PatientID     string          `json:"patientId" binding:"required,uuid"`
	DoctorID      string          `json:"doctorId" binding:"required,uuid"`
	BedID         string          `json:"bedId" binding:"required,uuid"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=BPJS cash insurance"`
	Fee           decimal.Decimal `json:"fee"`
	Complaint     string          `json:"complaint,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// ToRequest converts to the domain request.
func (r *RegisterInpatientRequest) ToRequest() (registration.InpatientRequest, error) {
	patientID, err := id.Parse(r.PatientID)
	if err != nil {
		return registration.InpatientRequest{}, err
	}
	doctorID, err := id.Parse(r.DoctorID)
	if err != nil {
		return registration.InpatientRequest{}, err
	}
	bedID, err := id.Parse(r.BedID)
	if err != nil {
		return registration.InpatientRequest{}, err
	}
	return registration.InpatientRequest{
		PatientID:     patientID,
		DoctorID:      doctorID,
		BedID:         bedID,
		PaymentMethod: registration.PaymentMethod(r.PaymentMethod),
		Fee:           r.Fee,
		Complaint:     r.Complaint,
		Notes:         r.Notes,
	}, nil
}

// DischargeRequest for inpatient discharge.
type DischargeRequest struct {
	Diagnosis string `json:"diagnosis,omitempty"`
}

// CancelRequest for cancelling a registration.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CompleteRequest for finishing an outpatient visit.
type CompleteRequest struct {
	Diagnosis string `json:"diagnosis,omitempty"`
}

// ListRegistrationsRequest filters the registration list.
type ListRegistrationsRequest struct {
	PaginationRequest
	Type         string `form:"type" binding:"omitempty,oneof=outpatient inpatient"`
	Status       string `form:"status" binding:"omitempty,oneof=waiting in_progress completed cancelled"`
	PolyclinicID string `form:"polyclinicId" binding:"omitempty,uuid"`
	PatientID    string `form:"patientId" binding:"omitempty,uuid"`
	DateFrom     string `form:"dateFrom"` // YYYY-MM-DD
	DateTo       string `form:"dateTo"`
}

// ToFilter converts to the domain filter.
func (r *ListRegistrationsRequest) ToFilter() (registration.ListFilter, error) {
	r.Defaults()
	filter := registration.ListFilter{
		Type:   registration.Type(r.Type),
		Status: registration.Status(r.Status),
		Limit:  r.PageSize,
		Offset: r.Offset(),
	}

	if r.PolyclinicID != "" {
		clinicID, err := id.Parse(r.PolyclinicID)
		if err != nil {
			return filter, err
		}
		filter.PolyclinicID = &clinicID
	}
	if r.PatientID != "" {
		patientID, err := id.Parse(r.PatientID)
		if err != nil {
			return filter, err
		}
		filter.PatientID = &patientID
	}
	if r.DateFrom != "" {
		from, err := time.Parse("2006-01-02", r.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &from
	}
	if r.DateTo != "" {
		to, err := time.Parse("2006-01-02", r.DateTo)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &to
	}
	return filter, nil
}

// RegistrationResponse represents a registration.
type RegistrationResponse struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	PatientID        string          `json:"patientId"`
	DoctorID         string          `json:"doctorId"`
	Type             string          `json:"type"`
	PolyclinicID     *string         `json:"polyclinicId,omitempty"`
	QueueNumber      *string         `json:"queueNumber,omitempty"`
	BedID            *string         `json:"bedId,omitempty"`
	AdmissionDate    *time.Time      `json:"admissionDate,omitempty"`
	DischargeDate    *time.Time      `json:"dischargeDate,omitempty"`
	RegistrationDate time.Time       `json:"registrationDate"`
	PaymentMethod    string          `json:"paymentMethod"`
	Fee              decimal.Decimal `json:"fee"`
	Complaint        *string         `json:"complaint,omitempty"`
	Diagnosis        *string         `json:"diagnosis,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// FromRegistration creates RegistrationResponse from a domain registration.
func FromRegistration(reg *registration.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:               reg.ID.String(),
		Number:           reg.Number,
		PatientID:        reg.PatientID.String(),
		DoctorID:         reg.DoctorID.String(),
		Type:             string(reg.Type),
		QueueNumber:      reg.QueueNumber,
		AdmissionDate:    reg.AdmissionDate,
		DischargeDate:    reg.DischargeDate,
		RegistrationDate: reg.RegistrationDate,
		PaymentMethod:    string(reg.PaymentMethod),
		Fee:              reg.Fee,
		Complaint:        reg.Complaint,
		Diagnosis:        reg.Diagnosis,
		Status:           string(reg.Status),
		CreatedAt:        reg.CreatedAt,
	}
	if reg.PolyclinicID != nil {
		s := reg.PolyclinicID.String()
		resp.PolyclinicID = &s
	}
	if reg.BedID != nil {
		s := reg.BedID.String()
		resp.BedID = &s
	}
	return resp
}

// FromRegistrations maps a registration slice.
func FromRegistrations(regs []registration.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, len(regs))
	for i := range regs {
		out[i] = FromRegistration(&regs[i])
	}
	return out
}
