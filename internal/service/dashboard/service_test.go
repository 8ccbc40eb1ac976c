package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

var (
	unCount  = target.Metric{ID: testID(21), DepartmentCode: "UN", Code: kpi.CodeCount, Label: "件数", Unit: "件", IsActive: true}
	unAmount = target.Metric{ID: testID(22), DepartmentCode: "UN", Code: kpi.CodeAmount, Label: "金額", Unit: "円", IsActive: true}
	wvCS     = target.Metric{ID: testID(23), DepartmentCode: "WV", Code: kpi.CodeCSCount, Label: "CS件数", Unit: "件", IsActive: true}
	period1  = target.Period{
		ID:        testID(31),
		Month:     day(2026, 2, 1),
		Name:      kpi.PeriodName(2026, 2, 1),
		StartDate: day(2026, 2, 1),
		EndDate:   day(2026, 2, 14),
	}
)

type fixture struct {
	svc     dashboard.DashboardService
	repo    *mockDashboardRepo
	months  *mockMonthRepo
	periods *mockPeriodRepo
	mailer  *mockMailer
}

func newFixture() fixture {
	f := fixture{
		repo: &mockDashboardRepo{},
		months: &mockMonthRepo{values: []target.MonthValue{
			{DepartmentCode: "UN", TargetMonth: day(2026, 2, 1), MetricID: unCount.ID, Value: 10},
			{DepartmentCode: "UN", TargetMonth: day(2026, 2, 1), MetricID: unAmount.ID, Value: 100000},
		}},
		periods: &mockPeriodRepo{
			periods: []target.Period{period1},
			values: []target.PeriodValue{
				{PeriodID: period1.ID, DepartmentCode: "UN", MetricID: unAmount.ID, Value: 50000},
			},
		},
		mailer: &mockMailer{},
	}

	f.repo.addReport("UN", day(2026, 2, 10), "Ishii", time.Date(2026, 2, 10, 0, 30, 0, 0, time.UTC),
		lineFixture{member: "Ishii", totals: kpi.Totals{Count: 1, Amount: 3000}},
		lineFixture{member: "Sato", totals: kpi.Totals{Count: 2, Amount: 5000}},
	)
	f.repo.addReport("WV", day(2026, 2, 9), "Tanaka", time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC),
		lineFixture{member: "Tanaka", totals: kpi.Totals{Count: 5, CSCount: 2, RefugeeCount: 3}},
	)

	departments := &mockDepartmentRepo{departments: []department.Department{
		{ID: testID(3), Code: "STYLE1", Name: "Style 1", IsActive: true},
		{ID: testID(1), Code: "UN", Name: "UN", IsActive: true},
		{ID: testID(2), Code: "WV", Name: "WV", IsActive: true},
		{ID: testID(4), Code: "OLD", Name: "Old", IsActive: false},
	}}
	metricRepo := &mockMetricRepo{metrics: []target.Metric{unCount, unAmount, wvCS}}

	f.svc = NewDashboardService(f.repo, departments, metricRepo, f.months, f.periods, f.mailer, Options{
		SplitCountCodes: []string{"WV"},
		SummaryTo:       []string{"office@example.org"},
		Now:             func() time.Time { return time.Date(2026, 2, 10, 15, 0, 0, 0, jst) },
	})
	return f
}

func TestGetDashboard_Today(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.GetDashboard(context.Background(), "today")
	require.NoError(t, err)

	assert.Equal(t, "today", resp.Mode)
	assert.Equal(t, "2026/02/10", resp.Date)
	require.Len(t, resp.SubmissionRows, 3)
	assert.Equal(t, []string{"STYLE1", "UN", "WV"}, []string{
		resp.SubmissionRows[0].Code, resp.SubmissionRows[1].Code, resp.SubmissionRows[2].Code,
	})

	style := resp.SubmissionRows[0]
	assert.Equal(t, dashboard.SubmissionNotSubmitted, style.Status)
	assert.Equal(t, "-", style.Count)
	assert.Equal(t, "-", style.AmountText)

	un := resp.SubmissionRows[1]
	assert.Equal(t, dashboard.SubmissionSubmitted, un.Status)
	assert.Equal(t, "Ishii", un.ReporterName)
	assert.Equal(t, "09:30", un.SubmittedTime)
	assert.Equal(t, "3", un.Count)
	assert.Equal(t, "8,000", un.AmountText)

	card := resp.KPICards[1]
	require.Len(t, card.Members, 2)
	assert.Equal(t, "Sato", card.Members[0].MemberName)
	assert.Equal(t, "5,000", card.Members[0].AmountText)
	assert.Equal(t, "Ishii", card.Members[1].MemberName)

	assert.Equal(t, "2026/2", resp.MonthSummary)
	assert.Equal(t, "active", resp.MonthStatus)
	assert.Equal(t, "2026年度2月 第1次路程", resp.PeriodSummary)
	assert.Equal(t, "active", resp.PeriodStatus)

	progress := resp.TargetProgress[1]
	assert.Equal(t, "件数 10件 / 金額 100000円", progress.Month.Target)
	assert.Equal(t, "件数 3件 / 金額 8000円", progress.Month.Actual)
	assert.Equal(t, "件数 30.0% / 金額 8.0%", progress.Month.Rate)
	assert.Equal(t, "件数 - / 金額 16.0%", progress.Period.Rate)

	assert.Equal(t, kpi.Triple{Target: "-", Actual: "-", Rate: "-"}, resp.TargetProgress[0].Month)
}

func TestGetDashboard_PrevShowsSplitCounts(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.GetDashboard(context.Background(), "prev")
	require.NoError(t, err)

	assert.Equal(t, "prev", resp.Mode)
	assert.Equal(t, "2026/02/09", resp.Date)

	wv := resp.SubmissionRows[2]
	assert.Equal(t, dashboard.SubmissionSubmitted, wv.Status)
	assert.True(t, wv.HasSplitCounts)
	assert.Equal(t, "5", wv.Count)
	assert.Equal(t, "2", wv.CSCount)
	assert.Equal(t, "3", wv.RefugeeCount)
	assert.Equal(t, "17:00", wv.SubmittedTime)

	assert.Equal(t, dashboard.SubmissionNotSubmitted, resp.SubmissionRows[1].Status)
}

func TestGetDashboard_NoPeriods(t *testing.T) {
	f := newFixture()
	f.periods.periods = nil

	resp, err := f.svc.GetDashboard(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "-", resp.PeriodSummary)
	assert.Equal(t, "-", resp.PeriodStatus)
}

func TestGetReportIndex_FallsBackToLatestMonth(t *testing.T) {
	f := newFixture()
	f.months.values = []target.MonthValue{
		{DepartmentCode: "UN", TargetMonth: day(2026, 1, 1), MetricID: unAmount.ID, Value: 70000},
	}

	index, err := f.svc.GetReportIndex(context.Background())
	require.NoError(t, err)

	require.Len(t, index.Departments, 3)
	assert.Equal(t, dashboard.DepartmentButton{Code: "UN", Name: "UN"}, index.Departments[1])
	assert.Equal(t, "2026/1", index.MonthSummary)
	assert.Equal(t, "finished", index.MonthStatus)
	assert.Equal(t, "件数 0件 / 金額 70000円", index.TargetProgress[1].Month.Target)

	admin, err := f.svc.GetDashboard(context.Background(), "today")
	require.NoError(t, err)
	assert.Equal(t, "2026/2", admin.MonthSummary)
	assert.Equal(t, "件数 0件 / 金額 0円", admin.TargetProgress[1].Month.Target)
}

func TestGetMailPayloads(t *testing.T) {
	f := newFixture()

	payloads, err := f.svc.GetMailPayloads(context.Background())
	require.NoError(t, err)

	today := payloads.Today
	assert.Equal(t, "2026/02/10", today.ReportDate)
	require.Len(t, today.Sections, 3)
	assert.Equal(t, "UN①", today.Sections[0].Heading)
	assert.Equal(t, "UN②", today.Sections[1].Heading)
	assert.Equal(t, "STYLE1", today.Sections[2].Code)
	assert.Equal(t, "Styleチーム", today.Sections[2].Heading)

	un := today.Sections[0]
	assert.True(t, un.HasReport)
	assert.Equal(t, int64(3), un.DailyCount)
	assert.Equal(t, "8,000円", un.DailyAmountText)
	assert.Equal(t, dashboard.MailMemberLine{Name: "Sato", Count: 2, AmountText: "5,000円"}, un.MemberLines[0])
	assert.Equal(t, []string{"件数 3/10件 達成率30.0%", "金額 8,000/100,000円 達成率8.0%"}, un.MonthLines)
	assert.Equal(t, []string{"件数 3/0件 達成率-", "金額 8,000/50,000円 達成率16.0%"}, un.PeriodLines)
	assert.False(t, today.Sections[1].HasReport)

	assert.Equal(t, "2026年度2月 第1次路程", today.PeriodName)
	assert.Equal(t, "2/1～2/14", today.PeriodRange)
	assert.Equal(t, dashboard.AmountSummary{ActualText: "8,000円", TargetText: "100,000円", Rate: "8.0%"}, today.UNWVSummary)

	assert.Equal(t, "2026/02/09", payloads.Prev.ReportDate)
	assert.True(t, payloads.Prev.Sections[1].HasReport)
}

func TestSendDailySummary(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.svc.SendDailySummary(context.Background(), "prev"))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"office@example.org"}, f.mailer.sent[0].to)
	assert.Equal(t, "2026/02/09", f.mailer.sent[0].payload.ReportDate)

	f.mailer.err = errors.New("smtp down")
	err := f.svc.SendDailySummary(context.Background(), "today")
	assert.ErrorContains(t, err, "smtp down")
}
