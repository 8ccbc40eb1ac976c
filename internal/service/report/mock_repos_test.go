package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
)

func testID(n int) string {
	return fmt.Sprintf("0190a000-0000-7000-8000-%012d", n)
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	reports     map[string]report.Report
	departments map[string]department.Department
	members     map[string]member.Member
	next        int
	createErrs  []error
}

func newMockReportRepo(departments map[string]department.Department, members map[string]member.Member) *mockReportRepo {
	return &mockReportRepo{
		reports:     make(map[string]report.Report),
		departments: departments,
		members:     members,
		next:        900,
	}
}

func (m *mockReportRepo) hydrate(r report.Report) report.Report {
	d := m.departments[r.DepartmentID]
	r.DepartmentCode = d.Code
	r.DepartmentName = d.Name
	r.ReporterName = ""
	if r.ReporterID != nil {
		r.ReporterName = m.members[*r.ReporterID].Name
	}
	lines := make([]report.Line, len(r.Lines))
	for i, l := range r.Lines {
		if l.MemberID != nil {
			l.MemberName = m.members[*l.MemberID].Name
		}
		lines[i] = l
	}
	r.Lines = lines
	return r
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (report.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return report.Report{}, report.ErrReportNotFound
	}
	return m.hydrate(r), nil
}

func (m *mockReportRepo) GetForUpdate(_ context.Context, departmentID string, reportDate time.Time) (report.Report, error) {
	for _, r := range m.reports {
		if r.DepartmentID == departmentID && r.ReportDate.Equal(reportDate) {
			return m.hydrate(r), nil
		}
	}
	return report.Report{}, report.ErrReportNotFound
}

func (m *mockReportRepo) Create(_ context.Context, r report.Report) (report.Report, error) {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		return report.Report{}, err
	}
	for _, existing := range m.reports {
		if existing.DepartmentID == r.DepartmentID && existing.ReportDate.Equal(r.ReportDate) {
			return report.Report{}, report.ErrReportDateTaken
		}
	}
	m.next++
	r.ID = testID(m.next)
	m.reports[r.ID] = r
	return r, nil
}

func (m *mockReportRepo) Update(_ context.Context, r report.Report) error {
	current, ok := m.reports[r.ID]
	if !ok {
		return report.ErrReportNotFound
	}
	for id, existing := range m.reports {
		if id != r.ID && existing.DepartmentID == r.DepartmentID && existing.ReportDate.Equal(r.ReportDate) {
			return report.ErrReportDateTaken
		}
	}
	r.Lines = current.Lines
	m.reports[r.ID] = r
	return nil
}

func (m *mockReportRepo) ReplaceLines(_ context.Context, reportID string, lines []report.Line) error {
	r, ok := m.reports[reportID]
	if !ok {
		return report.ErrReportNotFound
	}
	stored := make([]report.Line, len(lines))
	for i, l := range lines {
		m.next++
		l.ID = testID(m.next)
		l.ReportID = reportID
		stored[i] = l
	}
	r.Lines = stored
	m.reports[reportID] = r
	return nil
}

func (m *mockReportRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.reports[id]; !ok {
		return report.ErrReportNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *mockReportRepo) ListForDay(_ context.Context, departmentID string, reportDate time.Time, limit int) ([]report.Report, error) {
	var result []report.Report
	for _, r := range m.reports {
		if r.DepartmentID == departmentID && r.ReportDate.Equal(reportDate) {
			result = append(result, m.hydrate(r))
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockReportRepo) ListRecent(_ context.Context, limit int) ([]report.Report, error) {
	var result []report.Report
	for _, r := range m.reports {
		result = append(result, m.hydrate(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReportDate.After(result[j].ReportDate) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock DepartmentRepository (lookups only) ──

type mockDepartmentRepo struct {
	department.DepartmentRepository
	departments map[string]department.Department
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (department.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (m *mockDepartmentRepo) GetByCode(_ context.Context, code string) (department.Department, error) {
	for _, d := range m.departments {
		if d.Code == code {
			return d, nil
		}
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

// ── Mock MemberRepository (department listing only) ──

type mockMemberRepo struct {
	member.MemberRepository
	members map[string]member.Member
}

func (m *mockMemberRepo) ListByDepartment(_ context.Context, departmentID string) ([]member.Member, error) {
	var result []member.Member
	for _, mem := range m.members {
		for _, id := range mem.DepartmentIDs {
			if id == departmentID {
				result = append(result, mem)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
