package dto

import (
	"time"

	"medreg/internal/domain/patient"
)

// CreatePatientRequest for registering a new patient.
type CreatePatientRequest struct {
	NIK                   *string `json:"nik,omitempty"`
	Name                  string  `json:"name" binding:"required"`
	BirthDate             string  `json:"birthDate" binding:"required"` // YYYY-MM-DD
	BirthPlace            *string `json:"birthPlace,omitempty"`
	Gender                string  `json:"gender" binding:"required,oneof=male female"`
	Address               string  `json:"address" binding:"required"`
	Phone                 *string `json:"phone,omitempty"`
	BloodType             string  `json:"bloodType,omitempty"`
	EmergencyContactName  *string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string `json:"emergencyContactPhone,omitempty"`
}

// ToPatient converts the request to a domain entity.
func (r *CreatePatientRequest) ToPatient() (*patient.Patient, error) {
	birthDate, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return nil, err
	}

	p := patient.NewPatient(r.Name, birthDate, patient.Gender(r.Gender), r.Address)
	p.NIK = r.NIK
	p.BirthPlace = r.BirthPlace
	p.Phone = r.Phone
	p.EmergencyContactName = r.EmergencyContactName
	p.EmergencyContactPhone = r.EmergencyContactPhone
	if r.BloodType != "" {
		p.BloodType = patient.BloodType(r.BloodType)
	}
	return p, nil
}

// UpdatePatientRequest for updating patient data.
type UpdatePatientRequest struct {
	NIK                   *string `json:"nik,omitempty"`
	Name                  string  `json:"name" binding:"required"`
	BirthDate             string  `json:"birthDate" binding:"required"`
	BirthPlace            *string `json:"birthPlace,omitempty"`
	Gender                string  `json:"gender" binding:"required,oneof=male female"`
	Address               string  `json:"address" binding:"required"`
	Phone                 *string `json:"phone,omitempty"`
	BloodType             string  `json:"bloodType,omitempty"`
	EmergencyContactName  *string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string `json:"emergencyContactPhone,omitempty"`
}

// PatientResponse represents a patient.
type PatientResponse struct {
	ID                  string    `json:"id"`
	MedicalRecordNumber string    `json:"medicalRecordNumber"`
	NIK                 *string   `json:"nik,omitempty"`
	Name                string    `json:"name"`
	BirthDate           time.Time `json:"birthDate"`
	BirthPlace          *string   `json:"birthPlace,omitempty"`
	Gender              string    `json:"gender"`
	Age                 int       `json:"age"`
	Address             string    `json:"address"`
	Phone               *string   `json:"phone,omitempty"`
	BloodType           string    `json:"bloodType"`
	CreatedAt           time.Time `json:"createdAt"`
}

// FromPatient creates PatientResponse from domain patient.
func FromPatient(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:                  p.ID.String(),
		MedicalRecordNumber: p.MedicalRecordNumber,
		NIK:                 p.NIK,
		Name:                p.Name,
		BirthDate:           p.BirthDate,
		BirthPlace:          p.BirthPlace,
		Gender:              string(p.Gender),
		Age:                 p.Age(time.Now()),
		Address:             p.Address,
		Phone:               p.Phone,
		BloodType:           string(p.BloodType),
		CreatedAt:           p.CreatedAt,
	}
}

// FromPatients maps a patient slice.
func FromPatients(patients []patient.Patient) []PatientResponse {
	out := make([]PatientResponse, len(patients))
	for i := range patients {
		out[i] = FromPatient(&patients[i])
	}
	return out
}
