package registry_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/polyclinic"
	"medreg/internal/infrastructure/storage/postgres"
)

const polyclinicsTable = "polyclinics"

var polyclinicColumns = []string{
	"id", "code", "name", "location", "description", "is_active",
	"created_at", "updated_at",
}

// PolyclinicRepo implements polyclinic.Repository.
type PolyclinicRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPolyclinicRepo creates a new polyclinic repository.
func NewPolyclinicRepo(txManager *postgres.TxManager) *PolyclinicRepo {
	return &PolyclinicRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new polyclinic.
func (r *PolyclinicRepo) Create(ctx context.Context, p *polyclinic.Polyclinic) error {
	sql, args, err := r.builder.Insert(polyclinicsTable).
		Columns(polyclinicColumns...).
		Values(p.ID, p.Code, p.Name, p.Location, p.Description, p.IsActive, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("create polyclinic", err)
	}
	return nil
}

// GetByID retrieves a polyclinic by ID.
func (r *PolyclinicRepo) GetByID(ctx context.Context, clinicID id.ID) (*polyclinic.Polyclinic, error) {
	sql, args, err := r.builder.Select(polyclinicColumns...).
		From(polyclinicsTable).
		Where(squirrel.Eq{"id": clinicID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p polyclinic.Polyclinic
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("polyclinic", clinicID.String())
		}
		return nil, postgres.WrapStoreError("get polyclinic", err)
	}
	return &p, nil
}

// GetByCode retrieves a polyclinic by code.
func (r *PolyclinicRepo) GetByCode(ctx context.Context, code string) (*polyclinic.Polyclinic, error) {
	sql, args, err := r.builder.Select(polyclinicColumns...).
		From(polyclinicsTable).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p polyclinic.Polyclinic
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("polyclinic", code)
		}
		return nil, postgres.WrapStoreError("get polyclinic by code", err)
	}
	return &p, nil
}

// Update updates polyclinic data.
func (r *PolyclinicRepo) Update(ctx context.Context, p *polyclinic.Polyclinic) error {
	sql, args, err := r.builder.Update(polyclinicsTable).
		Set("name", p.Name).
		Set("location", p.Location).
		Set("description", p.Description).
		Set("is_active", p.IsActive).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update polyclinic", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("polyclinic", p.ID.String())
	}
	return nil
}

// List retrieves polyclinics, optionally only active ones.
func (r *PolyclinicRepo) List(ctx context.Context, activeOnly bool) ([]polyclinic.Polyclinic, error) {
	q := r.builder.Select(polyclinicColumns...).
		From(polyclinicsTable).
		OrderBy("code ASC")
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var clinics []polyclinic.Polyclinic
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &clinics, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("list polyclinics", err)
	}
	return clinics, nil
}

// Ensure interface compliance.
var _ polyclinic.Repository = (*PolyclinicRepo)(nil)
