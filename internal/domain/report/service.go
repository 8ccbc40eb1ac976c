package report

import (
	"context"
	"io"
	"time"
)

// FormContext is everything the submission form needs for one department.
type FormContext struct {
	DepartmentID      string
	DepartmentCode    string
	DepartmentName    string
	DefaultReporterID string
	Rules             Rules
	Members           []MemberOption
	SelectedDate      time.Time
	Recent            []Report
}

// HistoryLimit caps the history list and its export.
const HistoryLimit = 100

type MemberOption struct {
	ID   string
	Name string
}

type ReportService interface {
	// Submit stores the department-day report, replacing any earlier submission.
	Submit(ctx context.Context, req SubmitReportRequest) (Report, error)
	// Edit rewrites an existing report by id. The date may move.
	Edit(ctx context.Context, id string, req SubmitReportRequest) (Report, error)
	// Delete removes the report when it belongs to departmentCode.
	Delete(ctx context.Context, departmentCode, id string) error
	GetByID(ctx context.Context, id string) (Report, error)
	FormContext(ctx context.Context, departmentCode string, day time.Time) (FormContext, error)
	History(ctx context.Context) ([]Report, error)
	ExportHistory(ctx context.Context, w io.Writer) error
	RulesFor(departmentCode string) Rules
}
