// Package registration_repo provides the PostgreSQL implementation of the
// registration repository.
package registration_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/registration"
	"medreg/internal/infrastructure/storage/postgres"
)

const registrationsTable = "registrations"

var registrationColumns = []string{
	"id", "registration_number", "patient_id", "doctor_id", "user_id", "type",
	"polyclinic_id", "queue_number", "bed_id", "admission_date", "discharge_date",
	"registration_date", "payment_method", "fee", "complaint", "diagnosis",
	"status", "notes", "created_at", "updated_at",
}

// RegistrationRepo implements registration.Repository.
type RegistrationRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRegistrationRepo creates a new registration repository.
func NewRegistrationRepo(txManager *postgres.TxManager) *RegistrationRepo {
	return &RegistrationRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new registration. The unique index on registration_number
// backs the gapless counters: a duplicate here means the counter was bypassed.
func (r *RegistrationRepo) Create(ctx context.Context, reg *registration.Registration) error {
	sql, args, err := r.builder.Insert(registrationsTable).
		Columns(registrationColumns...).
		Values(
			reg.ID, reg.Number, reg.PatientID, reg.DoctorID, reg.UserID, reg.Type,
			reg.PolyclinicID, reg.QueueNumber, reg.BedID, reg.AdmissionDate, reg.DischargeDate,
			reg.RegistrationDate, reg.PaymentMethod, reg.Fee, reg.Complaint, reg.Diagnosis,
			reg.Status, reg.Notes, reg.CreatedAt, reg.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("create registration", err)
	}
	return nil
}

// GetByID retrieves a registration by ID.
func (r *RegistrationRepo) GetByID(ctx context.Context, regID id.ID) (*registration.Registration, error) {
	sql, args, err := r.builder.Select(registrationColumns...).
		From(registrationsTable).
		Where(squirrel.Eq{"id": regID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var reg registration.Registration
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &reg, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("registration", regID.String())
		}
		return nil, postgres.WrapStoreError("get registration", err)
	}
	return &reg, nil
}

// GetByNumber retrieves a registration by its formatted number.
func (r *RegistrationRepo) GetByNumber(ctx context.Context, number string) (*registration.Registration, error) {
	sql, args, err := r.builder.Select(registrationColumns...).
		From(registrationsTable).
		Where(squirrel.Eq{"registration_number": number}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var reg registration.Registration
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &reg, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("registration", number)
		}
		return nil, postgres.WrapStoreError("get registration by number", err)
	}
	return &reg, nil
}

// GetForUpdate locks the registration row for the current transaction.
func (r *RegistrationRepo) GetForUpdate(ctx context.Context, regID id.ID) (*registration.Registration, error) {
	sql := `
		SELECT id, registration_number, patient_id, doctor_id, user_id, type,
		       polyclinic_id, queue_number, bed_id, admission_date, discharge_date,
		       registration_date, payment_method, fee, complaint, diagnosis,
		       status, notes, created_at, updated_at
		FROM registrations
		WHERE id = $1
		FOR UPDATE
	`

	var reg registration.Registration
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &reg, sql, regID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("registration", regID.String())
		}
		return nil, postgres.WrapStoreError("lock registration", err)
	}
	return &reg, nil
}

// Update rewrites mutable registration fields.
func (r *RegistrationRepo) Update(ctx context.Context, reg *registration.Registration) error {
	sql, args, err := r.builder.Update(registrationsTable).
		Set("discharge_date", reg.DischargeDate).
		Set("payment_method", reg.PaymentMethod).
		Set("fee", reg.Fee).
		Set("complaint", reg.Complaint).
		Set("diagnosis", reg.Diagnosis).
		Set("status", reg.Status).
		Set("notes", reg.Notes).
		Set("updated_at", reg.UpdatedAt).
		Where(squirrel.Eq{"id": reg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update registration", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("registration", reg.ID.String())
	}
	return nil
}

// List returns registrations matching the filter plus the total count.
func (r *RegistrationRepo) List(ctx context.Context, filter registration.ListFilter) ([]registration.Registration, int64, error) {
	conds := r.filterConds(filter)

	countQ := r.builder.Select("COUNT(*)").From(registrationsTable)
	for _, c := range conds {
		countQ = countQ.Where(c)
	}

	sql, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int64
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, postgres.WrapStoreError("count registrations", err)
	}

	q := r.builder.Select(registrationColumns...).From(registrationsTable)
	for _, c := range conds {
		q = q.Where(c)
	}
	sql, args, err = q.
		OrderBy("registration_date DESC", "registration_number DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var regs []registration.Registration
	if err := pgxscan.Select(ctx, querier, &regs, sql, args...); err != nil {
		return nil, 0, postgres.WrapStoreError("list registrations", err)
	}
	return regs, total, nil
}

func (r *RegistrationRepo) filterConds(filter registration.ListFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer
	if filter.Type != "" {
		conds = append(conds, squirrel.Eq{"type": filter.Type})
	}
	if filter.Status != "" {
		conds = append(conds, squirrel.Eq{"status": filter.Status})
	}
	if filter.PolyclinicID != nil {
		conds = append(conds, squirrel.Eq{"polyclinic_id": *filter.PolyclinicID})
	}
	if filter.PatientID != nil {
		conds = append(conds, squirrel.Eq{"patient_id": *filter.PatientID})
	}
	if filter.DateFrom != nil {
		conds = append(conds, squirrel.GtOrEq{"registration_date": dayStart(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		conds = append(conds, squirrel.Lt{"registration_date": dayStart(*filter.DateTo).AddDate(0, 0, 1)})
	}
	return conds
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ActiveByPatient returns waiting/in_progress registrations for a patient.
func (r *RegistrationRepo) ActiveByPatient(ctx context.Context, patientID id.ID) ([]registration.Registration, error) {
	sql, args, err := r.builder.Select(registrationColumns...).
		From(registrationsTable).
		Where(squirrel.Eq{"patient_id": patientID}).
		Where(squirrel.Eq{"status": []registration.Status{
			registration.StatusWaiting, registration.StatusInProgress,
		}}).
		OrderBy("registration_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var regs []registration.Registration
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &regs, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("active registrations by patient", err)
	}
	return regs, nil
}

// Ensure interface compliance.
var _ registration.Repository = (*RegistrationRepo)(nil)
