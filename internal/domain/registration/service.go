package registration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"medreg/internal/core/apperror"
	corecontext "medreg/internal/core/context"
	"medreg/internal/core/id"
	"medreg/internal/core/sequence"
	"medreg/internal/core/tx"
	"medreg/internal/domain/bed"
	"medreg/internal/domain/doctor"
	"medreg/internal/domain/patient"
	"medreg/internal/domain/polyclinic"
	"medreg/pkg/logger"
)

// Auditor records workflow events. Implementations run against the same
// transaction as the workflow, so an aborted registration leaves no trail.
type Auditor interface {
	LogEvent(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service implements the front-desk registration workflows.
//
// Both workflows draw their identifiers and move beds inside a single
// transaction, so a failed registration never spends a number or leaves a bed
// occupied.
type Service struct {
	repo        Repository
	patients    patient.Repository
	doctors     doctor.Repository
	polyclinics polyclinic.Repository
	allocator   *bed.Allocator
	generator   sequence.Generator
	txManager   tx.Manager
	auditor     Auditor
}

// NewService creates a registration service.
func NewService(
	repo Repository,
	patients patient.Repository,
	doctors doctor.Repository,
	polyclinics polyclinic.Repository,
	allocator *bed.Allocator,
	generator sequence.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		doctors:     doctors,
		polyclinics: polyclinics,
		allocator:   allocator,
		generator:   generator,
		txManager:   txManager,
	}
}

// SetAuditor enables audit logging for the workflows. Optional.
func (s *Service) SetAuditor(a Auditor) {
	s.auditor = a
}

func (s *Service) audit(ctx context.Context, r *Registration, action string, changes map[string]any) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.LogEvent(ctx, "registration", r.ID, action, changes)
}

// OutpatientRequest carries the outpatient registration form.
type OutpatientRequest struct {
	PatientID     id.ID
	DoctorID      id.ID
	PolyclinicID  id.ID
	PaymentMethod PaymentMethod
	Fee           decimal.Decimal
	Complaint     string
	Notes         string
}

// InpatientRequest carries the inpatient admission form.
type InpatientRequest struct {
	PatientID     id.ID
	DoctorID      id.ID
	BedID         id.ID
	PaymentMethod PaymentMethod
	Fee           decimal.Decimal
	Complaint     string
	Notes         string
}

// RegisterOutpatient registers a patient for an outpatient visit.
//
// One transaction draws the registration number (RJ-YYYYMMDD-NNNN), the
// per-clinic queue number (OP-YYYYMMDD-CODE-NNN) and inserts the registration.
// The clock is read once, so both identifiers and the counter scopes agree on
// the day even across midnight.
func (s *Service) RegisterOutpatient(ctx context.Context, req OutpatientRequest) (*Registration, error) {
	if _, err := s.patients.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}

	doc, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.IsActive {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "doctor is not active").
			WithDetail("doctor_id", req.DoctorID)
	}

	clinic, err := s.polyclinics.GetByID(ctx, req.PolyclinicID)
	if err != nil {
		return nil, err
	}
	if !clinic.IsActive {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "polyclinic is not active").
			WithDetail("polyclinic_id", req.PolyclinicID)
	}

	now := time.Now()
	stamp := sequence.DateStamp(now)

	var reg *Registration
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, _, err := sequence.Issue(ctx, s.generator, sequence.OutpatientRegistration, stamp, "")
		if err != nil {
			return err
		}

		queue, _, err := sequence.Issue(ctx, s.generator, sequence.OutpatientQueue, stamp, clinic.Code)
		if err != nil {
			return err
		}

		r := &Registration{
			ID:               id.New(),
			Number:           number,
			PatientID:        req.PatientID,
			DoctorID:         req.DoctorID,
			UserID:           userID(ctx),
			Type:             TypeOutpatient,
			PolyclinicID:     &req.PolyclinicID,
			QueueNumber:      &queue,
			RegistrationDate: now,
			PaymentMethod:    req.PaymentMethod,
			Fee:              req.Fee,
			Complaint:        optional(req.Complaint),
			Status:           StatusWaiting,
			Notes:            optional(req.Notes),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := r.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, r); err != nil {
			return err
		}

		if err := s.audit(ctx, r, "register", map[string]any{
			"registration_number": r.Number,
			"queue_number":        queue,
			"polyclinic":          clinic.Code,
		}); err != nil {
			return err
		}

		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "outpatient registered",
		"registration_number", reg.Number,
		"queue_number", *reg.QueueNumber,
		"polyclinic", clinic.Code)
	return reg, nil
}

// RegisterInpatient admits a patient to a bed.
//
// One transaction draws the registration number (RI-YYYYMMDD-NNNN), allocates
// the bed and inserts the registration. Any failure rolls back everything,
// including the bed, so a failed admission cannot leave a bed stuck occupied.
func (s *Service) RegisterInpatient(ctx context.Context, req InpatientRequest) (*Registration, error) {
	if _, err := s.patients.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}

	doc, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.IsActive {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "doctor is not active").
			WithDetail("doctor_id", req.DoctorID)
	}

	now := time.Now()
	stamp := sequence.DateStamp(now)

	var reg *Registration
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, _, err := sequence.Issue(ctx, s.generator, sequence.InpatientRegistration, stamp, "")
		if err != nil {
			return err
		}

		// Joins the outer transaction; the bed rolls back with the insert.
		if _, err := s.allocator.Allocate(ctx, req.BedID); err != nil {
			return err
		}

		r := &Registration{
			ID:               id.New(),
			Number:           number,
			PatientID:        req.PatientID,
			DoctorID:         req.DoctorID,
			UserID:           userID(ctx),
			Type:             TypeInpatient,
			BedID:            &req.BedID,
			AdmissionDate:    &now,
			RegistrationDate: now,
			PaymentMethod:    req.PaymentMethod,
			Fee:              req.Fee,
			Complaint:        optional(req.Complaint),
			Status:           StatusInProgress,
			Notes:            optional(req.Notes),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := r.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, r); err != nil {
			return err
		}

		if err := s.audit(ctx, r, "register", map[string]any{
			"registration_number": r.Number,
			"bed_id":              req.BedID.String(),
		}); err != nil {
			return err
		}

		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inpatient admitted",
		"registration_number", reg.Number,
		"bed_id", req.BedID)
	return reg, nil
}

// Discharge completes an inpatient registration and releases its bed in one
// transaction. The registration row is locked first so two concurrent
// discharges serialize; the second sees completed and returns the registration
// unchanged (double discharge is a benign no-op at the front desk).
func (s *Service) Discharge(ctx context.Context, regID id.ID, diagnosis string) (*Registration, error) {
	var reg *Registration

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, regID)
		if err != nil {
			return err
		}

		if r.Type != TypeInpatient {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only inpatient registrations can be discharged").
				WithDetail("registration_number", r.Number)
		}

		switch r.Status {
		case StatusCompleted:
			reg = r
			return nil
		case StatusCancelled:
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cancelled registration cannot be discharged").
				WithDetail("registration_number", r.Number)
		}

		now := time.Now()
		r.Status = StatusCompleted
		r.DischargeDate = &now
		if diagnosis != "" {
			r.Diagnosis = &diagnosis
		}
		r.UpdatedAt = now

		if err := s.repo.Update(ctx, r); err != nil {
			return err
		}

		if r.BedID != nil {
			if _, err := s.allocator.Release(ctx, *r.BedID); err != nil {
				return err
			}
		}

		if err := s.audit(ctx, r, "discharge", map[string]any{
			"registration_number": r.Number,
			"diagnosis":           diagnosis,
		}); err != nil {
			return err
		}

		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "patient discharged", "registration_number", reg.Number)
	return reg, nil
}

// Cancel voids a registration before treatment completes. An inpatient
// cancellation releases the bed in the same transaction.
func (s *Service) Cancel(ctx context.Context, regID id.ID, reason string) (*Registration, error) {
	var reg *Registration

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, regID)
		if err != nil {
			return err
		}

		if !r.IsActive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only waiting or in-progress registrations can be cancelled").
				WithDetail("registration_number", r.Number).
				WithDetail("status", string(r.Status))
		}

		now := time.Now()
		r.Status = StatusCancelled
		if reason != "" {
			r.Notes = &reason
		}
		r.UpdatedAt = now

		if err := s.repo.Update(ctx, r); err != nil {
			return err
		}

		if r.Type == TypeInpatient && r.BedID != nil {
			if _, err := s.allocator.Release(ctx, *r.BedID); err != nil {
				return err
			}
		}

		if err := s.audit(ctx, r, "cancel", map[string]any{
			"registration_number": r.Number,
			"reason":              reason,
		}); err != nil {
			return err
		}

		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "registration cancelled", "registration_number", reg.Number)
	return reg, nil
}

// Start moves a waiting outpatient registration to in_progress when the
// doctor calls the queue number.
func (s *Service) Start(ctx context.Context, regID id.ID) (*Registration, error) {
	return s.transition(ctx, regID, StatusWaiting, StatusInProgress)
}

// Complete finishes an outpatient visit.
func (s *Service) Complete(ctx context.Context, regID id.ID, diagnosis string) (*Registration, error) {
	var reg *Registration

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, regID)
		if err != nil {
			return err
		}

		if r.Type != TypeOutpatient {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"inpatient registrations are completed via discharge").
				WithDetail("registration_number", r.Number)
		}
		if !r.IsActive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"registration is not active").
				WithDetail("registration_number", r.Number).
				WithDetail("status", string(r.Status))
		}

		r.Status = StatusCompleted
		if diagnosis != "" {
			r.Diagnosis = &diagnosis
		}
		r.UpdatedAt = time.Now()

		if err := s.repo.Update(ctx, r); err != nil {
			return err
		}

		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func (s *Service) transition(ctx context.Context, regID id.ID, from, to Status) (*Registration, error) {
	var reg *Registration

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, regID)
		if err != nil {
			return err
		}

		if r.Status != from {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "invalid status transition").
				WithDetail("registration_number", r.Number).
				WithDetail("from", string(r.Status)).
				WithDetail("to", string(to))
		}

		r.Status = to
		r.UpdatedAt = time.Now()

		if err := s.repo.Update(ctx, r); err != nil {
			return err
		}

		reg = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}

// GetByID returns one registration.
func (s *Service) GetByID(ctx context.Context, regID id.ID) (*Registration, error) {
	return s.repo.GetByID(ctx, regID)
}

// GetByNumber returns one registration by its formatted number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Registration, error) {
	if _, err := sequence.ParseSequence(number); err != nil {
		return nil, apperror.NewValidation("invalid registration number").
			WithDetail("number", number)
	}
	return s.repo.GetByNumber(ctx, number)
}

// List returns registrations matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Registration, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// ActiveByPatient returns the patient's open registrations.
func (s *Service) ActiveByPatient(ctx context.Context, patientID id.ID) ([]Registration, error) {
	return s.repo.ActiveByPatient(ctx, patientID)
}

// userID resolves the authenticated user recorded on the registration.
// Seed scripts and tests run without an authenticated context.
func userID(ctx context.Context) id.ID {
	raw := corecontext.GetUserID(ctx)
	if raw == "" {
		return id.Nil()
	}
	uid, err := id.Parse(raw)
	if err != nil {
		return id.Nil()
	}
	return uid
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
