package report

import (
	"context"
	"time"
)

type ReportRepository interface {
	// GetByID loads the report with department, reporter and lines.
	GetByID(ctx context.Context, id string) (Report, error)
	// GetForUpdate locks the (department, date) report inside the caller's transaction.
	GetForUpdate(ctx context.Context, departmentID string, reportDate time.Time) (Report, error)
	Create(ctx context.Context, newReport Report) (Report, error)
	// Update rewrites the header fields; ErrReportDateTaken when the new date collides.
	Update(ctx context.Context, report Report) error
	ReplaceLines(ctx context.Context, reportID string, lines []Line) error
	Delete(ctx context.Context, id string) error

	ListForDay(ctx context.Context, departmentID string, reportDate time.Time, limit int) ([]Report, error)
	// ListRecent returns the newest reports with their lines, newest date first.
	ListRecent(ctx context.Context, limit int) ([]Report, error)
}
