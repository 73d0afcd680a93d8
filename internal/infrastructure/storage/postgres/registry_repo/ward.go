package registry_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/ward"
	"medreg/internal/infrastructure/storage/postgres"
)

const wardsTable = "wards"

var wardColumns = []string{
	"id", "code", "name", "class", "location", "description", "daily_rate",
	"is_active", "created_at", "updated_at",
}

// WardRepo implements ward.Repository.
type WardRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewWardRepo creates a new ward repository.
func NewWardRepo(txManager *postgres.TxManager) *WardRepo {
	return &WardRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new ward.
func (r *WardRepo) Create(ctx context.Context, w *ward.Ward) error {
	sql, args, err := r.builder.Insert(wardsTable).
		Columns(wardColumns...).
		Values(
			w.ID, w.Code, w.Name, w.Class, w.Location, w.Description, w.DailyRate,
			w.IsActive, w.CreatedAt, w.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("create ward", err)
	}
	return nil
}

// GetByID retrieves a ward by ID.
func (r *WardRepo) GetByID(ctx context.Context, wardID id.ID) (*ward.Ward, error) {
	sql, args, err := r.builder.Select(wardColumns...).
		From(wardsTable).
		Where(squirrel.Eq{"id": wardID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w ward.Ward
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ward", wardID.String())
		}
		return nil, postgres.WrapStoreError("get ward", err)
	}
	return &w, nil
}

// GetByCode retrieves a ward by code.
func (r *WardRepo) GetByCode(ctx context.Context, code string) (*ward.Ward, error) {
	sql, args, err := r.builder.Select(wardColumns...).
		From(wardsTable).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w ward.Ward
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ward", code)
		}
		return nil, postgres.WrapStoreError("get ward by code", err)
	}
	return &w, nil
}

// Update updates ward data.
func (r *WardRepo) Update(ctx context.Context, w *ward.Ward) error {
	sql, args, err := r.builder.Update(wardsTable).
		Set("name", w.Name).
		Set("class", w.Class).
		Set("location", w.Location).
		Set("description", w.Description).
		Set("daily_rate", w.DailyRate).
		Set("is_active", w.IsActive).
		Set("updated_at", w.UpdatedAt).
		Where(squirrel.Eq{"id": w.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update ward", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ward", w.ID.String())
	}
	return nil
}

// List retrieves wards, optionally only active ones.
func (r *WardRepo) List(ctx context.Context, activeOnly bool) ([]ward.Ward, error) {
	q := r.builder.Select(wardColumns...).
		From(wardsTable).
		OrderBy("code ASC")
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var wards []ward.Ward
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &wards, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("list wards", err)
	}
	return wards, nil
}

// Ensure interface compliance.
var _ ward.Repository = (*WardRepo)(nil)
