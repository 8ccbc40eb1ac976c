package target

import (
	"context"
	"time"
)

type MetricRepository interface {
	GetByID(ctx context.Context, id string) (Metric, error)
	// ListByDepartment orders by display_order, then id.
	ListByDepartment(ctx context.Context, departmentID string, activeOnly bool) ([]Metric, error)
	// ListActive returns active metrics of active departments ordered by department code.
	ListActive(ctx context.Context) ([]Metric, error)
	ExistsByCode(ctx context.Context, departmentID, code string, excludeID *string) (bool, error)
	Create(ctx context.Context, newMetric Metric) (Metric, error)
	Update(ctx context.Context, metric Metric) error
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int64, error)
}

type MonthTargetRepository interface {
	// Upsert keys on (department, month, metric).
	Upsert(ctx context.Context, value MonthValue) error
	// ListByMonth returns values of active metrics for month.
	ListByMonth(ctx context.Context, month time.Time) ([]MonthValue, error)
	// LatestMonth reports the most recent month with any stored target.
	LatestMonth(ctx context.Context) (time.Time, bool, error)
}

type PeriodRepository interface {
	GetByID(ctx context.Context, id string) (Period, error)
	GetByMonthAndName(ctx context.Context, month time.Time, name string) (Period, error)
	// List orders by month desc, start date, id.
	List(ctx context.Context) ([]Period, error)
	// FindCovering returns the first period, in List order, whose range contains day.
	FindCovering(ctx context.Context, day time.Time) (Period, error)
	Latest(ctx context.Context) (Period, error)
	ListOverlapping(ctx context.Context, start, end time.Time, excludeIDs []string) ([]Period, error)
	Create(ctx context.Context, newPeriod Period) (Period, error)
	Update(ctx context.Context, period Period) error
	Delete(ctx context.Context, id string) error

	// UpsertValue keys on (period, department, metric).
	UpsertValue(ctx context.Context, value PeriodValue) error
	// ListValues returns values of active metrics for the period.
	ListValues(ctx context.Context, periodID string) ([]PeriodValue, error)
}
