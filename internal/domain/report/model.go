// Package report provides front-desk operational reporting.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary aggregates the day's registrations.
type DailySummary struct {
	Date            time.Time       `json:"date"`
	TotalOutpatient int64           `json:"totalOutpatient"`
	TotalInpatient  int64           `json:"totalInpatient"`
	TotalCompleted  int64           `json:"totalCompleted"`
	TotalCancelled  int64           `json:"totalCancelled"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// QueueSummary is one polyclinic's queue state for a day.
type QueueSummary struct {
	PolyclinicID   string `db:"polyclinic_id" json:"polyclinicId"`
	PolyclinicCode string `db:"code" json:"polyclinicCode"`
	PolyclinicName string `db:"name" json:"polyclinicName"`
	Waiting        int64  `db:"waiting" json:"waiting"`
	InProgress     int64  `db:"in_progress" json:"inProgress"`
	Completed      int64  `db:"completed" json:"completed"`
	Total          int64  `db:"total" json:"total"`
}

// OccupancySummary is one ward's bed usage.
type OccupancySummary struct {
	WardID    string `db:"ward_id" json:"wardId"`
	WardName  string `db:"name" json:"wardName"`
	WardClass string `db:"class" json:"wardClass"`
	TotalBeds int64  `db:"total_beds" json:"totalBeds"`
	Occupied  int64  `db:"occupied" json:"occupied"`
	Available int64  `db:"available" json:"available"`
}

// RevenueByMethod is revenue grouped by payment method over a period.
type RevenueByMethod struct {
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	Count         int64           `db:"count" json:"count"`
	Total         decimal.Decimal `db:"total" json:"total"`
}

// Dashboard is the front-desk landing page payload.
type Dashboard struct {
	Today     DailySummary       `json:"today"`
	Queues    []QueueSummary     `json:"queues"`
	Occupancy []OccupancySummary `json:"occupancy"`
}
