// Package ward provides the inpatient ward catalog.
package ward

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
)

// Class is the ward service class.
type Class string

const (
	ClassVIP Class = "VIP"
	ClassI   Class = "I"
	ClassII  Class = "II"
	ClassIII Class = "III"
)

// Ward represents an inpatient ward.
type Ward struct {
	ID          id.ID           `db:"id" json:"id"`
	Code        string          `db:"code" json:"code"`
	Name        string          `db:"name" json:"name"`
	Class       Class           `db:"class" json:"class"`
	Location    *string         `db:"location" json:"location,omitempty"`
	Description *string         `db:"description" json:"description,omitempty"`
	DailyRate   decimal.Decimal `db:"daily_rate" json:"dailyRate"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// NewWard creates a new active ward.
func NewWard(code, name string, class Class) *Ward {
	now := time.Now()
	return &Ward{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Class:     class,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements basic entity validation.
func (w *Ward) Validate(ctx context.Context) error {
	if w.Code == "" {
		return apperror.NewValidation("ward code is required").WithDetail("field", "code")
	}
	if w.Name == "" {
		return apperror.NewValidation("ward name is required").WithDetail("field", "name")
	}
	switch w.Class {
	case ClassVIP, ClassI, ClassII, ClassIII:
	default:
		return apperror.NewValidation("invalid ward class").WithDetail("value", string(w.Class))
	}
	if w.DailyRate.IsNegative() {
		return apperror.NewValidation("daily rate must not be negative").WithDetail("field", "dailyRate")
	}
	return nil
}
