package target

import (
	"context"
	"time"
)

type TargetService interface {
	ListMetrics(ctx context.Context, departmentID string) ([]Metric, error)
	GetMetric(ctx context.Context, id string) (Metric, error)
	SaveMetric(ctx context.Context, req SaveMetricRequest) (Metric, error)
	// ToggleMetric flips is_active and returns the updated metric.
	ToggleMetric(ctx context.Context, id string) (Metric, error)

	MonthTargets(ctx context.Context, month time.Time) (MonthTargetsView, error)
	SaveMonthTargets(ctx context.Context, req SaveMonthTargetsRequest) error

	ListPeriods(ctx context.Context) ([]Period, error)
	PeriodTargets(ctx context.Context, periodID string) (PeriodTargetsView, error)
	SavePeriod(ctx context.Context, req SavePeriodRequest) (Period, error)
	SavePeriodTargets(ctx context.Context, req SavePeriodTargetsRequest) error
	DeletePeriod(ctx context.Context, id string) error
}
