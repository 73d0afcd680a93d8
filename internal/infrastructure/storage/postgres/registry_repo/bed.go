package registry_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/bed"
	"medreg/internal/infrastructure/storage/postgres"
)

const bedsTable = "beds"

var bedColumns = []string{
	"id", "ward_id", "bed_number", "status", "notes", "occupied_at",
	"created_at", "updated_at",
}

// BedRepo implements bed.Repository.
type BedRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewBedRepo creates a new bed repository.
func NewBedRepo(txManager *postgres.TxManager) *BedRepo {
	return &BedRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new bed.
func (r *BedRepo) Create(ctx context.Context, b *bed.Bed) error {
	sql, args, err := r.builder.Insert(bedsTable).
		Columns(bedColumns...).
		Values(
			b.ID, b.WardID, b.Number, b.Status, b.Notes, b.OccupiedAt,
			b.CreatedAt, b.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("create bed", err)
	}
	return nil
}

// GetByID retrieves a bed without locking.
func (r *BedRepo) GetByID(ctx context.Context, bedID id.ID) (*bed.Bed, error) {
	sql, args, err := r.builder.Select(bedColumns...).
		From(bedsTable).
		Where(squirrel.Eq{"id": bedID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b bed.Bed
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bed", bedID.String())
		}
		return nil, postgres.WrapStoreError("get bed", err)
	}
	return &b, nil
}

// GetForUpdate retrieves a bed under an exclusive row lock. The wait for a
// contended lock is bounded by the transaction's statement timeout; on
// timeout the caller sees a transient error, not an indefinite hang.
func (r *BedRepo) GetForUpdate(ctx context.Context, bedID id.ID) (*bed.Bed, error) {
	sql := `
		SELECT id, ward_id, bed_number, status, notes, occupied_at,
		       created_at, updated_at
		FROM beds
		WHERE id = $1
		FOR UPDATE
	`

	var b bed.Bed
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, bedID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bed", bedID.String())
		}
		return nil, postgres.WrapStoreError("lock bed", err)
	}
	return &b, nil
}

// UpdateStatus writes the status and occupancy timestamp of a bed.
func (r *BedRepo) UpdateStatus(ctx context.Context, bedID id.ID, status bed.Status, occupiedAt *time.Time) error {
	sql, args, err := r.builder.Update(bedsTable).
		Set("status", status).
		Set("occupied_at", occupiedAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": bedID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update bed status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("bed", bedID.String())
	}
	return nil
}

// Update rewrites mutable bed fields.
func (r *BedRepo) Update(ctx context.Context, b *bed.Bed) error {
	sql, args, err := r.builder.Update(bedsTable).
		Set("bed_number", b.Number).
		Set("notes", b.Notes).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("update bed", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("bed", b.ID.String())
	}
	return nil
}

// Delete removes a bed.
func (r *BedRepo) Delete(ctx context.Context, bedID id.ID) error {
	sql, args, err := r.builder.Delete(bedsTable).
		Where(squirrel.Eq{"id": bedID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapStoreError("delete bed", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("bed", bedID.String())
	}
	return nil
}

// ListByWard returns beds of one ward ordered by bed number.
func (r *BedRepo) ListByWard(ctx context.Context, wardID id.ID) ([]bed.Bed, error) {
	sql, args, err := r.builder.Select(bedColumns...).
		From(bedsTable).
		Where(squirrel.Eq{"ward_id": wardID}).
		OrderBy("bed_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var beds []bed.Bed
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &beds, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("list beds by ward", err)
	}
	return beds, nil
}

// ListAvailable returns all available beds ordered by ward and number.
func (r *BedRepo) ListAvailable(ctx context.Context) ([]bed.Bed, error) {
	sql, args, err := r.builder.Select(bedColumns...).
		From(bedsTable).
		Where(squirrel.Eq{"status": bed.StatusAvailable}).
		OrderBy("ward_id ASC", "bed_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var beds []bed.Bed
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &beds, sql, args...); err != nil {
		return nil, postgres.WrapStoreError("list available beds", err)
	}
	return beds, nil
}

// AvailabilityByWard returns free bed counts grouped by ward.
func (r *BedRepo) AvailabilityByWard(ctx context.Context) ([]bed.WardAvailability, error) {
	sql := `
		SELECT w.id AS ward_id, w.name AS ward_name, w.class AS ward_class,
		       COUNT(b.id) FILTER (WHERE b.status = 'available') AS available_count
		FROM wards w
		LEFT JOIN beds b ON b.ward_id = w.id
		WHERE w.is_active
		GROUP BY w.id, w.name, w.class
		ORDER BY w.code
	`

	var out []bed.WardAvailability
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql); err != nil {
		return nil, postgres.WrapStoreError("bed availability by ward", err)
	}
	return out, nil
}

// Ensure interface compliance.
var _ bed.Repository = (*BedRepo)(nil)
