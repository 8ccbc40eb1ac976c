package http

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

func testID(n int) string {
	return fmt.Sprintf("0190a000-0000-7000-8000-%012d", n)
}

// ── Report service ──

type fakeReportService struct {
	report.ReportService
	submitted []report.SubmitReportRequest
	submitErr error
	deleted   []string
	reports   map[string]report.Report
}

func (f *fakeReportService) FormContext(_ context.Context, code string, day time.Time) (report.FormContext, error) {
	if code != "UN" {
		return report.FormContext{}, report.ErrDepartmentNotFound
	}
	return report.FormContext{
		DepartmentID:      testID(1),
		DepartmentCode:    "UN",
		DepartmentName:    "UN支援",
		DefaultReporterID: testID(11),
		Rules:             report.Rules{ShowLocation: true},
		Members: []report.MemberOption{
			{ID: testID(11), Name: "山田太郎"},
			{ID: testID(12), Name: "佐藤花子"},
		},
		SelectedDate: day,
	}, nil
}

func (f *fakeReportService) Submit(_ context.Context, req report.SubmitReportRequest) (report.Report, error) {
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return report.Report{}, f.submitErr
	}
	day, _ := validator.IsValidDate(req.ReportDate)
	return report.Report{ID: testID(900), DepartmentCode: req.DepartmentCode, ReportDate: day}, nil
}

func (f *fakeReportService) GetByID(_ context.Context, id string) (report.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return report.Report{}, report.ErrReportNotFound
	}
	return r, nil
}

func (f *fakeReportService) Edit(_ context.Context, id string, req report.SubmitReportRequest) (report.Report, error) {
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return report.Report{}, f.submitErr
	}
	r := f.reports[id]
	r.ReportDate, _ = validator.IsValidDate(req.ReportDate)
	return r, nil
}

func (f *fakeReportService) Delete(_ context.Context, code, id string) error {
	if _, ok := f.reports[id]; !ok {
		return report.ErrReportNotFound
	}
	f.deleted = append(f.deleted, code+"/"+id)
	return nil
}

func (f *fakeReportService) History(context.Context) ([]report.Report, error) {
	out := make([]report.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReportService) ExportHistory(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte("PK"))
	return err
}

// ── Dashboard service ──

type fakeDashboardService struct {
	dashboard.DashboardService
	sentModes []string
	sendErr   error
}

func (f *fakeDashboardService) GetDashboard(_ context.Context, mode string) (*dashboard.DashboardResponse, error) {
	date := "2026/02/10"
	if mode == report.ModePrev {
		date = "2026/02/09"
	}
	return &dashboard.DashboardResponse{
		Mode: mode,
		Date: date,
		SubmissionRows: []dashboard.SubmissionRow{
			{Code: "UN", Label: "UN支援", Status: dashboard.SubmissionSubmitted, ReporterName: "山田太郎", SubmittedTime: "09:30", Count: "3", AmountText: "8,000円"},
			{Code: "WV", Label: "WV", Status: dashboard.SubmissionNotSubmitted, ReporterName: kpi.NoValue, SubmittedTime: kpi.NoValue, Count: kpi.NoValue, AmountText: kpi.NoValue, HasSplitCounts: true},
		},
		MonthSummary:  "2026/2",
		MonthStatus:   string(kpi.StatusActive),
		PeriodSummary: kpi.NoValue,
		PeriodStatus:  kpi.NoValue,
	}, nil
}

func (f *fakeDashboardService) GetMailPayloads(context.Context) (*dashboard.MailPayloads, error) {
	return &dashboard.MailPayloads{
		Today: dashboard.MailPayload{ReportDate: "2026/02/10"},
		Prev:  dashboard.MailPayload{ReportDate: "2026/02/09"},
	}, nil
}

func (f *fakeDashboardService) GetReportIndex(ctx context.Context) (*dashboard.ReportIndexResponse, error) {
	d, _ := f.GetDashboard(ctx, report.ModeToday)
	return &dashboard.ReportIndexResponse{
		Departments:       []dashboard.DepartmentButton{{Code: "UN", Name: "UN支援"}},
		DashboardResponse: *d,
	}, nil
}

func (f *fakeDashboardService) SendDailySummary(_ context.Context, mode string) error {
	f.sentModes = append(f.sentModes, mode)
	return f.sendErr
}

// ── Member and department services ──

type fakeMemberService struct {
	member.MemberService
	saveErr error
	saved   []member.SaveMemberRequest
}

func (f *fakeMemberService) List(context.Context) ([]member.Member, error) {
	return []member.Member{{ID: testID(11), Name: "山田太郎", LoginID: "taro", DepartmentIDs: []string{testID(1)}}}, nil
}

func (f *fakeMemberService) ListByDepartment(context.Context, string) ([]member.Member, error) {
	return nil, nil
}

func (f *fakeMemberService) Save(_ context.Context, req member.SaveMemberRequest) (member.Member, error) {
	f.saved = append(f.saved, req)
	return member.Member{ID: testID(20), Name: req.Name}, f.saveErr
}

type fakeDepartmentService struct {
	department.DepartmentService
}

func (f *fakeDepartmentService) List(context.Context, bool) ([]department.Department, error) {
	return []department.Department{{ID: testID(1), Code: "UN", Name: "UN支援", IsActive: true}}, nil
}

// ── Target service ──

type fakeTargetService struct {
	target.TargetService
	savePeriodErr error
	toggled       []string
}

func (f *fakeTargetService) ListMetrics(context.Context, string) ([]target.Metric, error) {
	return []target.Metric{{ID: testID(31), DepartmentID: testID(1), DepartmentCode: "UN", Code: "count", Label: "件数", Unit: "件", DisplayOrder: 1, IsActive: true}}, nil
}

func (f *fakeTargetService) ToggleMetric(_ context.Context, id string) (target.Metric, error) {
	if id != testID(31) {
		return target.Metric{}, target.ErrMetricNotFound
	}
	f.toggled = append(f.toggled, id)
	return target.Metric{ID: id}, nil
}

func (f *fakeTargetService) PeriodTargets(_ context.Context, periodID string) (target.PeriodTargetsView, error) {
	if periodID != "" && periodID != testID(41) {
		return target.PeriodTargetsView{}, target.ErrPeriodNotFound
	}
	return target.PeriodTargetsView{}, nil
}

func (f *fakeTargetService) SavePeriod(context.Context, target.SavePeriodRequest) (target.Period, error) {
	return target.Period{}, f.savePeriodErr
}
