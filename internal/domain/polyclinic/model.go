// Package polyclinic provides the outpatient polyclinic catalog.
package polyclinic

import (
	"context"
	"regexp"
	"time"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// codePattern constrains polyclinic codes. Queue numbers embed the code
// between separators (OP-YYYYMMDD-CODE-NNN) and are parsed back by splitting
// on "-", so a dash inside a code would corrupt every queue number issued
// for it.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// Polyclinic represents one outpatient clinic (UMUM, GIGI, ANAK, ...).
type Polyclinic struct {
	ID          id.ID     `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// NewPolyclinic creates a new active polyclinic.
func NewPolyclinic(code, name string) *Polyclinic {
	now := time.Now()
	return &Polyclinic{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements basic entity validation.
func (p *Polyclinic) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("polyclinic name is required").WithDetail("field", "name")
	}
	if !codePattern.MatchString(p.Code) {
		return apperror.NewValidation("polyclinic code must be 2-20 uppercase letters or digits").
			WithDetail("field", "code").
			WithDetail("value", p.Code)
	}
	return nil
}
