// Package bed provides the hospital bed inventory and its allocation logic.
// Beds are created by ward administration; occupancy transitions are owned
// exclusively by the Allocator.
package bed

import (
	"context"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// Status is the bed occupancy state.
type Status string

const (
	// StatusAvailable - bed is free and can be allocated
	StatusAvailable Status = "available"
	// StatusOccupied - bed is assigned to an active inpatient registration
	StatusOccupied Status = "occupied"
	// StatusMaintenance - bed withdrawn for maintenance; never an allocation target
	StatusMaintenance Status = "maintenance"
	// StatusReserved - bed held administratively; never an allocation target
	StatusReserved Status = "reserved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusReserved:
		return true
	}
	return false
}

// Bed represents one physical bed in a ward.
type Bed struct {
	ID         id.ID      `db:"id" json:"id"`
	WardID     id.ID      `db:"ward_id" json:"wardId"`
	Number     string     `db:"bed_number" json:"number"`
	Status     Status     `db:"status" json:"status"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	OccupiedAt *time.Time `db:"occupied_at" json:"occupiedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewBed creates a new available bed.
func NewBed(wardID id.ID, number string) *Bed {
	now := time.Now()
	return &Bed{
		ID:        id.New(),
		WardID:    wardID,
		Number:    number,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements basic entity validation.
func (b *Bed) Validate(ctx context.Context) error {
	if b.Number == "" {
		return apperror.NewValidation("bed number is required").WithDetail("field", "number")
	}
	if id.IsNil(b.WardID) {
		return apperror.NewValidation("ward is required").WithDetail("field", "wardId")
	}
	if !b.Status.Valid() {
		return apperror.NewValidation("invalid bed status").WithDetail("value", string(b.Status))
	}
	return nil
}

// IsAvailable returns true if the bed can be allocated.
func (b *Bed) IsAvailable() bool {
	return b.Status == StatusAvailable
}

// IsOccupied returns true if the bed is currently assigned.
func (b *Bed) IsOccupied() bool {
	return b.Status == StatusOccupied
}

// WardAvailability summarizes free beds per ward.
type WardAvailability struct {
	WardID         id.ID  `db:"ward_id" json:"wardId"`
	WardName       string `db:"ward_name" json:"wardName"`
	WardClass      string `db:"ward_class" json:"wardClass"`
	AvailableCount int64  `db:"available_count" json:"availableCount"`
}
