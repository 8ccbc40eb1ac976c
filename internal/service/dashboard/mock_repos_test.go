package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
)

func testID(n int) string {
	return fmt.Sprintf("0190a000-0000-7000-8000-%012d", n)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ── Mock DashboardRepository ──

type lineFixture struct {
	code   string
	day    time.Time
	member string
	totals kpi.Totals
}

type mockDashboardRepo struct {
	reports []dashboard.DayReport
	// reportDays holds the report date of reports[i]
	reportDays []time.Time
	lines      []lineFixture
}

func (m *mockDashboardRepo) addReport(code string, d time.Time, reporter string, submitted time.Time, lines ...lineFixture) {
	var count, amount int64
	for _, l := range lines {
		l.code = code
		l.day = d
		m.lines = append(m.lines, l)
		count += l.totals.Count
		amount += l.totals.Amount
	}
	m.reports = append(m.reports, dashboard.DayReport{
		ReportID:       testID(500 + len(m.reports)),
		DepartmentCode: code,
		ReporterName:   reporter,
		TotalCount:     count,
		FollowupCount:  amount,
		SubmittedAt:    submitted,
	})
	m.reportDays = append(m.reportDays, d)
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func (m *mockDashboardRepo) ListDayReports(_ context.Context, d time.Time, codes []string) ([]dashboard.DayReport, error) {
	var result []dashboard.DayReport
	for i, r := range m.reports {
		if m.reportDays[i].Equal(d) && contains(codes, r.DepartmentCode) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockDashboardRepo) ListDayMemberTotals(_ context.Context, d time.Time, codes []string) ([]dashboard.MemberLineTotal, error) {
	index := make(map[string]int)
	var result []dashboard.MemberLineTotal
	for _, l := range m.lines {
		if !l.day.Equal(d) || !contains(codes, l.code) {
			continue
		}
		key := l.code + "|" + l.member
		i, ok := index[key]
		if !ok {
			index[key] = len(result)
			result = append(result, dashboard.MemberLineTotal{DepartmentCode: l.code, MemberName: l.member})
			i = len(result) - 1
		}
		result[i].Totals = result[i].Totals.Add(l.totals)
	}
	return result, nil
}

func (m *mockDashboardRepo) CollectActualTotals(_ context.Context, start, end time.Time, codes []string) (map[string]kpi.Totals, error) {
	result := make(map[string]kpi.Totals, len(codes))
	for _, code := range codes {
		result[code] = kpi.Totals{}
	}
	for _, l := range m.lines {
		if l.day.Before(start) || l.day.After(end) || !contains(codes, l.code) {
			continue
		}
		result[l.code] = result[l.code].Add(l.totals)
	}
	return result, nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	department.DepartmentRepository
	departments []department.Department
}

func (m *mockDepartmentRepo) List(_ context.Context, activeOnly bool) ([]department.Department, error) {
	var result []department.Department
	for _, d := range m.departments {
		if !activeOnly || d.IsActive {
			result = append(result, d)
		}
	}
	return result, nil
}

// ── Mock MetricRepository ──

type mockMetricRepo struct {
	target.MetricRepository
	metrics []target.Metric
}

func (m *mockMetricRepo) ListActive(_ context.Context) ([]target.Metric, error) {
	var result []target.Metric
	for _, metric := range m.metrics {
		if metric.IsActive {
			result = append(result, metric)
		}
	}
	return result, nil
}

// ── Mock MonthTargetRepository ──

type mockMonthRepo struct {
	values []target.MonthValue
}

func (m *mockMonthRepo) Upsert(_ context.Context, v target.MonthValue) error {
	m.values = append(m.values, v)
	return nil
}

func (m *mockMonthRepo) ListByMonth(_ context.Context, month time.Time) ([]target.MonthValue, error) {
	var result []target.MonthValue
	for _, v := range m.values {
		if v.TargetMonth.Equal(month) {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockMonthRepo) LatestMonth(_ context.Context) (time.Time, bool, error) {
	var latest time.Time
	for _, v := range m.values {
		if v.TargetMonth.After(latest) {
			latest = v.TargetMonth
		}
	}
	return latest, !latest.IsZero(), nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	target.PeriodRepository
	periods []target.Period
	values  []target.PeriodValue
}

func (m *mockPeriodRepo) FindCovering(_ context.Context, d time.Time) (target.Period, error) {
	for _, p := range m.periods {
		if !d.Before(p.StartDate) && !d.After(p.EndDate) {
			return p, nil
		}
	}
	return target.Period{}, target.ErrPeriodNotFound
}

func (m *mockPeriodRepo) Latest(_ context.Context) (target.Period, error) {
	if len(m.periods) == 0 {
		return target.Period{}, target.ErrPeriodNotFound
	}
	return m.periods[0], nil
}

func (m *mockPeriodRepo) ListValues(_ context.Context, periodID string) ([]target.PeriodValue, error) {
	var result []target.PeriodValue
	for _, v := range m.values {
		if v.PeriodID == periodID {
			result = append(result, v)
		}
	}
	return result, nil
}

// ── Mock EmailService ──

type sentSummary struct {
	to      []string
	payload dashboard.MailPayload
}

type mockMailer struct {
	sent []sentSummary
	err  error
}

func (m *mockMailer) SendDailySummary(to []string, payload dashboard.MailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentSummary{to: to, payload: payload})
	return nil
}
