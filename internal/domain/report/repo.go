package report

import (
	"context"
	"time"
)

// Repository defines the read-side aggregation queries.
type Repository interface {
	DailySummary(ctx context.Context, day time.Time) (*DailySummary, error)
	QueuesByPolyclinic(ctx context.Context, day time.Time) ([]QueueSummary, error)
	OccupancyByWard(ctx context.Context) ([]OccupancySummary, error)
	RevenueByMethod(ctx context.Context, from, to time.Time) ([]RevenueByMethod, error)
}
