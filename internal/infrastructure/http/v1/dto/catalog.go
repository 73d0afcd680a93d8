package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"medreg/internal/domain/bed"
	"medreg/internal/domain/doctor"
	"medreg/internal/domain/polyclinic"
	"medreg/internal/domain/ward"
)

// --- Polyclinic ---

// CreatePolyclinicRequest for creating a polyclinic.
type CreatePolyclinicRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdatePolyclinicRequest for updating a polyclinic. Code is immutable.
type UpdatePolyclinicRequest struct {
	Name        string  `json:"name" binding:"required"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// PolyclinicResponse represents a polyclinic.
type PolyclinicResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// FromPolyclinic creates PolyclinicResponse from domain polyclinic.
func FromPolyclinic(p *polyclinic.Polyclinic) PolyclinicResponse {
	return PolyclinicResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Location:    p.Location,
		Description: p.Description,
		IsActive:    p.IsActive,
	}
}

// --- Doctor ---

// CreateDoctorRequest for creating a doctor.
type CreateDoctorRequest struct {
	LicenseNumber  string  `json:"licenseNumber" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Specialization string  `json:"specialization" binding:"required"`
	PolyclinicID   *string `json:"polyclinicId,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
}

// UpdateDoctorRequest for updating a doctor.
type UpdateDoctorRequest struct {
	Name           string  `json:"name" binding:"required"`
	Specialization string  `json:"specialization" binding:"required"`
	PolyclinicID   *string `json:"polyclinicId,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

// DoctorResponse represents a doctor.
type DoctorResponse struct {
	ID             string  `json:"id"`
	LicenseNumber  string  `json:"licenseNumber"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	PolyclinicID   *string `json:"polyclinicId,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	IsActive       bool    `json:"isActive"`
}

// FromDoctor creates DoctorResponse from domain doctor.
func FromDoctor(d *doctor.Doctor) DoctorResponse {
	resp := DoctorResponse{
		ID:             d.ID.String(),
		LicenseNumber:  d.LicenseNumber,
		Name:           d.Name,
		Specialization: d.Specialization,
		Phone:          d.Phone,
		Email:          d.Email,
		IsActive:       d.IsActive,
	}
	if d.PolyclinicID != nil {
		s := d.PolyclinicID.String()
		resp.PolyclinicID = &s
	}
	return resp
}

// --- Ward ---

// CreateWardRequest for creating a ward.
type CreateWardRequest struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Class       string          `json:"class" binding:"required,oneof=VIP I II III"`
	Location    *string         `json:"location,omitempty"`
	Description *string         `json:"description,omitempty"`
	DailyRate   decimal.Decimal `json:"dailyRate"`
}

// UpdateWardRequest for updating a ward.
type UpdateWardRequest struct {
	Name        string          `json:"name" binding:"required"`
	Class       string          `json:"class" binding:"required,oneof=VIP I II III"`
	Location    *string         `json:"location,omitempty"`
	Description *string         `json:"description,omitempty"`
	DailyRate   decimal.Decimal `json:"dailyRate"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// WardResponse represents a ward.
type WardResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Class     string          `json:"class"`
	Location  *string         `json:"location,omitempty"`
	DailyRate decimal.Decimal `json:"dailyRate"`
	IsActive  bool            `json:"isActive"`
}

// FromWard creates WardResponse from domain ward.
func FromWard(w *ward.Ward) WardResponse {
	return WardResponse{
		ID:        w.ID.String(),
		Code:      w.Code,
		Name:      w.Name,
		Class:     string(w.Class),
		Location:  w.Location,
		DailyRate: w.DailyRate,
		IsActive:  w.IsActive,
	}
}

// --- Bed ---

// CreateBedRequest for adding a bed to a ward.
type CreateBedRequest struct {
	Number string  `json:"number" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// SetBedStatusRequest for administrative bed transitions.
type SetBedStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available maintenance reserved"`
}

// BedResponse represents a bed.
type BedResponse struct {
	ID         string     `json:"id"`
	WardID     string     `json:"wardId"`
	Number     string     `json:"number"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
	OccupiedAt *time.Time `json:"occupiedAt,omitempty"`
}

// FromBed creates BedResponse from domain bed.
func FromBed(b *bed.Bed) BedResponse {
	return BedResponse{
		ID:         b.ID.String(),
		WardID:     b.WardID.String(),
		Number:     b.Number,
		Status:     string(b.Status),
		Notes:      b.Notes,
		OccupiedAt: b.OccupiedAt,
	}
}

// FromBeds maps a bed slice.
func FromBeds(beds []bed.Bed) []BedResponse {
	out := make([]BedResponse, len(beds))
	for i := range beds {
		out[i] = FromBed(&beds[i])
	}
	return out
}
