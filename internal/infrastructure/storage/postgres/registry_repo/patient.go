// Package registry_repo provides PostgreSQL implementations for the patient
// registry and catalog repositories.
package registry_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/patient"
	"medreg/internal/infrastructure/storage/postgres"
)

const patientsTable = "patients"

var patientColumns = []string{
	"id", "medical_record_number", "nik", "name", "birth_date", "birth_place",
	"gender", "address", "phone", "blood_type",
	"emergency_contact_name", "emergency_contact_phone",
	"created_at", "updated_at",
}

// PatientRepo implements patient.Repository.
type PatientRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPatientRepo creates a new patient repository.
func NewPatientRepo(txManager *postgres.TxManager) *PatientRepo {
	return &PatientRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PatientRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(patientColumns...).From(patientsTable)
}

// Create inserts a new patient.
func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	sql, args, err := r.builder.Insert(patientsTable).
		Columns(patientColumns...).
		Values(
			p.ID, p.MedicalRecordNumber, p.NIK, p.Name, p.BirthDate, p.BirthPlace,
			p.Gender, p.Address, p.Phone, p.BloodType,
			p.EmergencyContactName, p.EmergencyContactPhone,
			p.CreatedAt, p.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("create patient", err)
	}
	return nil
}

// GetByID retrieves a patient by ID.
func (r *PatientRepo) GetByID(ctx context.Context, patientID id.ID) (*patient.Patient, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": patientID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p patient.Patient
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("patient", patientID.String())
		}
		return nil, postgres.WrapStoreError("get patient", err)
	}
	return &p, nil
}

// GetByMedicalRecordNumber retrieves a patient by MRN.
func (r *PatientRepo) GetByMedicalRecordNumber(ctx context.Context, mrn string) (*patient.Patient, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"medical_record_number": mrn}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p patient.Patient
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("patient", mrn)
		}
		return nil, postgres.WrapStoreError("get patient by mrn", err)
	}
	return &p, nil
}

// Update updates patient data.
func (r *PatientRepo) Update(ctx context.Context, p *patient.Patient) error {
	sql, args, err := r.builder.Update(patientsTable).
		Set("nik", p.NIK).
		Set("name", p.Name).
		Set("birth_date", p.BirthDate).
		Set("birth_place", p.BirthPlace).
		Set("gender", p.Gender).
		Set("address", p.Address).
		Set("phone", p.Phone).
		Set("blood_type", p.BloodType).
		Set("emergency_contact_name", p.EmergencyContactName).
		Set("emergency_contact_phone", p.EmergencyContactPhone).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update patient", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("patient", p.ID.String())
	}
	return nil
}

// Search returns patients matching the filter plus the total count.
func (r *PatientRepo) Search(ctx context.Context, filter patient.SearchFilter) ([]patient.Patient, int64, error) {
	base := r.baseSelect()
	countQ := r.builder.Select("COUNT(*)").From(patientsTable)

	if filter.Query != "" {
		cond := squirrel.Or{
			squirrel.ILike{"name": "%" + filter.Query + "%"},
			squirrel.ILike{"medical_record_number": "%" + filter.Query + "%"},
		}
		base = base.Where(cond)
		countQ = countQ.Where(cond)
	}

	sql, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int64
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, postgres.WrapStoreError("count patients", err)
	}

	sql, args, err = base.
		OrderBy("name ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var patients []patient.Patient
	if err := pgxscan.Select(ctx, querier, &patients, sql, args...); err != nil {
		return nil, 0, postgres.WrapStoreError("search patients", err)
	}
	return patients, total, nil
}

// Ensure interface compliance.
var _ patient.Repository = (*PatientRepo)(nil)
