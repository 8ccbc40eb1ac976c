package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// ListDayReports returns the day's report headers for codes in single query
func (r *dashboardRepositoryImpl) ListDayReports(ctx context.Context, day time.Time, codes []string) ([]dashboard.DayReport, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT r.id, d.code, COALESCE(m.name, '-'), r.total_count, r.followup_count, r.updated_at
		FROM daily_department_reports r
		JOIN departments d ON d.id = r.department_id
		LEFT JOIN members m ON m.id = r.reporter_id
		WHERE r.report_date = $1 AND d.code = ANY($2)
		ORDER BY d.code, r.updated_at DESC
	`

	rows, err := q.Query(ctx, query, day, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to list day reports: %w", err)
	}
	defer rows.Close()

	var reports []dashboard.DayReport
	for rows.Next() {
		var rep dashboard.DayReport
		if err := rows.Scan(&rep.ReportID, &rep.DepartmentCode, &rep.ReporterName,
			&rep.TotalCount, &rep.FollowupCount, &rep.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan day report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// ListDayMemberTotals groups the day's lines per department and member name in single query
func (r *dashboardRepositoryImpl) ListDayMemberTotals(ctx context.Context, day time.Time, codes []string) ([]dashboard.MemberLineTotal, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.code, COALESCE(m.name, '-') AS member_name,
			COALESCE(SUM(l.count), 0), COALESCE(SUM(l.amount), 0),
			COALESCE(SUM(l.cs_count), 0), COALESCE(SUM(l.refugee_count), 0)
		FROM daily_department_report_lines l
		JOIN daily_department_reports r ON r.id = l.report_id
		JOIN departments d ON d.id = r.department_id
		LEFT JOIN members m ON m.id = l.member_id
		WHERE r.report_date = $1 AND d.code = ANY($2)
		GROUP BY d.code, COALESCE(m.name, '-')
		ORDER BY d.code
	`

	rows, err := q.Query(ctx, query, day, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to list member totals: %w", err)
	}
	defer rows.Close()

	var totals []dashboard.MemberLineTotal
	for rows.Next() {
		var t dashboard.MemberLineTotal
		if err := rows.Scan(&t.DepartmentCode, &t.MemberName,
			&t.Totals.Count, &t.Totals.Amount, &t.Totals.CSCount, &t.Totals.RefugeeCount); err != nil {
			return nil, fmt.Errorf("failed to scan member total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// CollectActualTotals sums lines in the inclusive range per department code in single query
func (r *dashboardRepositoryImpl) CollectActualTotals(ctx context.Context, start, end time.Time, codes []string) (map[string]kpi.Totals, error) {
	result := make(map[string]kpi.Totals, len(codes))
	for _, code := range codes {
		result[code] = kpi.Totals{}
	}
	if len(codes) == 0 {
		return result, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.code,
			COALESCE(SUM(l.count), 0), COALESCE(SUM(l.amount), 0),
			COALESCE(SUM(l.cs_count), 0), COALESCE(SUM(l.refugee_count), 0)
		FROM daily_department_report_lines l
		JOIN daily_department_reports r ON r.id = l.report_id
		JOIN departments d ON d.id = r.department_id
		WHERE r.report_date >= $1 AND r.report_date <= $2 AND d.code = ANY($3)
		GROUP BY d.code
	`

	rows, err := q.Query(ctx, query, start, end, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to collect actual totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code string
			t    kpi.Totals
		)
		if err := rows.Scan(&code, &t.Count, &t.Amount, &t.CSCount, &t.RefugeeCount); err != nil {
			return nil, fmt.Errorf("failed to scan actual totals: %w", err)
		}
		result[code] = t
	}
	return result, rows.Err()
}
