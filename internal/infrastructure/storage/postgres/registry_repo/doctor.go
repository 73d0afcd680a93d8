package registry_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/doctor"
	"medreg/internal/infrastructure/storage/postgres"
)

const doctorsTable = "doctors"

var doctorColumns = []string{
	"id", "license_number", "name", "specialization", "polyclinic_id",
	"phone", "email", "is_active", "created_at", "updated_at",
}

// DoctorRepo implements doctor.Repository.
type DoctorRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewDoctorRepo creates a new doctor repository.
func NewDoctorRepo(txManager *postgres.TxManager) *DoctorRepo {
	return &DoctorRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new doctor.
func (r *DoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	sql, args, err := r.builder.Insert(doctorsTable).
		Columns(doctorColumns...).
		Values(
			d.ID, d.LicenseNumber, d.Name, d.Specialization, d.PolyclinicID,
			d.Phone, d.Email, d.IsActive, d.CreatedAt, d.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("create doctor", err)
	}
	return nil
}

// GetByID retrieves a doctor by ID.
func (r *DoctorRepo) GetByID(ctx context.Context, doctorID id.ID) (*doctor.Doctor, error) {
	sql, args, err := r.builder.Select(doctorColumns...).
		From(doctorsTable).
		Where(squirrel.Eq{"id": doctorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d doctor.Doctor
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("doctor", doctorID.String())
		}
		return nil, postgres.WrapStoreError("get doctor", err)
	}
	return &d, nil
}

// GetByLicense retrieves a doctor by license number.
func (r *DoctorRepo) GetByLicense(ctx context.Context, licenseNumber string) (*doctor.Doctor, error) {
	sql, args, err := r.builder.Select(doctorColumns...).
		From(doctorsTable).
		Where(squirrel.Eq{"license_number": licenseNumber}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d doctor.Doctor
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("doctor", licenseNumber)
		}
		return nil, postgres.WrapStoreError("get doctor by license", err)
	}
	return &d, nil
}

// Update updates doctor data.
func (r *DoctorRepo) Update(ctx context.Context, d *doctor.Doctor) error {
	sql, args, err := r.builder.Update(doctorsTable).
		Set("name", d.Name).
		Set("specialization", d.Specialization).
		Set("polyclinic_id", d.PolyclinicID).
		Set("phone", d.Phone).
		Set("email", d.Email).
		Set("is_active", d.IsActive).
		Set("updated_at", d.UpdatedAt).
		Where(squirrel.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("doctor", d.ID.String())
	}
	return nil
}

// List retrieves doctors, optionally only active ones.
func (r *DoctorRepo) List(ctx context.Context, activeOnly bool) ([]doctor.Doctor, error) {
	q := r.builder.Select(doctorColumns...).
		From(doctorsTable).
		OrderBy("name ASC")
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doctors []doctor.Doctor
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &doctors, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("list doctors", err)
	}
	return doctors, nil
}

// ListByPolyclinic retrieves active doctors practicing in a polyclinic.
func (r *DoctorRepo) ListByPolyclinic(ctx context.Context, clinicID id.ID) ([]doctor.Doctor, error) {
	sql, args, err := r.builder.Select(doctorColumns...).
		From(doctorsTable).
		Where(squirrel.Eq{"polyclinic_id": clinicID}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doctors []doctor.Doctor
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &doctors, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("list doctors by polyclinic", err)
	}
	return doctors, nil
}

// Ensure interface compliance.
var _ doctor.Repository = (*DoctorRepo)(nil)
