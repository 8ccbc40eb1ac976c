package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
)

// DayReport is one submitted report header for a day.
type DayReport struct {
	ReportID       string
	DepartmentCode string
	ReporterName   string
	TotalCount     int64
	FollowupCount  int64
	SubmittedAt    time.Time
}

// MemberLineTotal sums one member's lines within a department for a day.
// Lines whose member was deleted are grouped under "-".
type MemberLineTotal struct {
	DepartmentCode string
	MemberName     string
	Totals         kpi.Totals
}

// DashboardRepository defines the read queries behind the dashboard
type DashboardRepository interface {
	// ListDayReports returns reports of day for codes, newest submission first per code.
	ListDayReports(ctx context.Context, day time.Time, codes []string) ([]DayReport, error)

	// ListDayMemberTotals groups the day's lines by department code and member name.
	ListDayMemberTotals(ctx context.Context, day time.Time, codes []string) ([]MemberLineTotal, error)

	// CollectActualTotals sums lines in [start, end] per department code.
	// Every requested code is present in the result.
	CollectActualTotals(ctx context.Context, start, end time.Time, codes []string) (map[string]kpi.Totals, error)
}
