// Package report_repo provides PostgreSQL aggregation queries for reports.
package report_repo

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"medreg/internal/domain/report"
	"medreg/internal/infrastructure/storage/postgres"
)

// ReportRepo implements report.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// DailySummary aggregates the day's registrations. Cancelled registrations
// are excluded from revenue.
func (r *ReportRepo) DailySummary(ctx context.Context, day time.Time) (*report.DailySummary, error) {
	sql := `
		SELECT
			COUNT(*) FILTER (WHERE type = 'outpatient')      AS total_outpatient,
			COUNT(*) FILTER (WHERE type = 'inpatient')       AS total_inpatient,
			COUNT(*) FILTER (WHERE status = 'completed')     AS total_completed,
			COUNT(*) FILTER (WHERE status = 'cancelled')     AS total_cancelled,
			COALESCE(SUM(fee) FILTER (WHERE status <> 'cancelled'), 0) AS total_revenue
		FROM registrations
		WHERE registration_date >= $1 AND registration_date < $2
	`

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var row struct {
		TotalOutpatient int64           `db:"total_outpatient"`
		TotalInpatient  int64           `db:"total_inpatient"`
		TotalCompleted  int64           `db:"total_completed"`
		TotalCancelled  int64           `db:"total_cancelled"`
		TotalRevenue    decimal.Decimal `db:"total_revenue"`
	}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, start, end); err != nil {
		return nil, postgres.WrapStoreError("daily summary", err)
	}

	return &report.DailySummary{
		Date:            start,
		TotalOutpatient: row.TotalOutpatient,
		TotalInpatient:  row.TotalInpatient,
		TotalCompleted:  row.TotalCompleted,
		TotalCancelled:  row.TotalCancelled,
		TotalRevenue:    row.TotalRevenue,
	}, nil
}

// QueuesByPolyclinic returns queue state per polyclinic for a day.
func (r *ReportRepo) QueuesByPolyclinic(ctx context.Context, day time.Time) ([]report.QueueSummary, error) {
	sql := `
		SELECT p.id AS polyclinic_id, p.code, p.name,
			COUNT(r.id) FILTER (WHERE r.status = 'waiting')     AS waiting,
			COUNT(r.id) FILTER (WHERE r.status = 'in_progress') AS in_progress,
			COUNT(r.id) FILTER (WHERE r.status = 'completed')   AS completed,
			COUNT(r.id)                                         AS total
		FROM polyclinics p
		LEFT JOIN registrations r
			ON r.polyclinic_id = p.id
			AND r.registration_date >= $1 AND r.registration_date < $2
		WHERE p.is_active
		GROUP BY p.id, p.code, p.name
		ORDER BY p.code
	`

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var out []report.QueueSummary
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, start, end); err != nil {
		return nil, postgres.WrapStoreError("queues by polyclinic", err)
	}
	return out, nil
}

// OccupancyByWard returns current bed usage per ward.
func (r *ReportRepo) OccupancyByWard(ctx context.Context) ([]report.OccupancySummary, error) {
	sql := `
		SELECT w.id AS ward_id, w.name, w.class,
			COUNT(b.id)                                        AS total_beds,
			COUNT(b.id) FILTER (WHERE b.status = 'occupied')   AS occupied,
			COUNT(b.id) FILTER (WHERE b.status = 'available')  AS available
		FROM wards w
		LEFT JOIN beds b ON b.ward_id = w.id
		WHERE w.is_active
		GROUP BY w.id, w.name, w.class
		ORDER BY w.code
	`

	var out []report.OccupancySummary
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql); err != nil {
		return nil, postgres.WrapStoreError("occupancy by ward", err)
	}
	return out, nil
}

// RevenueByMethod returns revenue grouped by payment method over [from, to].
func (r *ReportRepo) RevenueByMethod(ctx context.Context, from, to time.Time) ([]report.RevenueByMethod, error) {
	sql := `
		SELECT payment_method, COUNT(*) AS count, COALESCE(SUM(fee), 0) AS total
		FROM registrations
		WHERE registration_date >= $1 AND registration_date < $2
		  AND status <> 'cancelled'
		GROUP BY payment_method
		ORDER BY total DESC
	`

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	var out []report.RevenueByMethod
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, start, end); err != nil {
		return nil, postgres.WrapStoreError("revenue by payment method", err)
	}
	return out, nil
}

// Ensure interface compliance.
var _ report.Repository = (*ReportRepo)(nil)
