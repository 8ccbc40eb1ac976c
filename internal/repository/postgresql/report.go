package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

const reportSelect = `
	SELECT r.id, r.department_id, d.code, d.name, r.report_date, r.reporter_id,
		COALESCE(m.name, ''), r.total_count, r.followup_count, r.location, r.memo,
		r.created_at, r.updated_at
	FROM daily_department_reports r
	JOIN departments d ON d.id = r.department_id
	LEFT JOIN members m ON m.id = r.reporter_id
`

func scanReport(row pgx.Row) (report.Report, error) {
	var rep report.Report
	err := row.Scan(
		&rep.ID, &rep.DepartmentID, &rep.DepartmentCode, &rep.DepartmentName, &rep.ReportDate, &rep.ReporterID,
		&rep.ReporterName, &rep.TotalCount, &rep.FollowupCount, &rep.Location, &rep.Memo,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	return rep, err
}

// GetByID implements report.ReportRepository.
func (r *reportRepositoryImpl) GetByID(ctx context.Context, id string) (report.Report, error) {
	q := GetQuerier(ctx, r.db)

	rep, err := scanReport(q.QueryRow(ctx, reportSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Report{}, report.ErrReportNotFound
		}
		return report.Report{}, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	lines, err := r.listLines(ctx, []string{rep.ID})
	if err != nil {
		return report.Report{}, err
	}
	rep.Lines = lines[rep.ID]
	return rep, nil
}

// GetForUpdate implements report.ReportRepository.
func (r *reportRepositoryImpl) GetForUpdate(ctx context.Context, departmentID string, reportDate time.Time) (report.Report, error) {
	q := GetQuerier(ctx, r.db)

	rep, err := scanReport(q.QueryRow(ctx,
		reportSelect+` WHERE r.department_id = $1 AND r.report_date = $2 FOR UPDATE OF r`,
		departmentID, reportDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Report{}, report.ErrReportNotFound
		}
		return report.Report{}, fmt.Errorf("failed to lock report: %w", err)
	}
	return rep, nil
}

// Create implements report.ReportRepository.
func (r *reportRepositoryImpl) Create(ctx context.Context, newReport report.Report) (report.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_department_reports
			(id, department_id, report_date, reporter_id, total_count, followup_count, location, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	created := newReport
	err := q.QueryRow(ctx, query,
		newID(), newReport.DepartmentID, newReport.ReportDate, newReport.ReporterID,
		newReport.TotalCount, newReport.FollowupCount, newReport.Location, newReport.Memo,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return report.Report{}, report.ErrReportDateTaken
		}
		return report.Report{}, fmt.Errorf("failed to create report: %w", err)
	}
	return created, nil
}

// Update implements report.ReportRepository.
func (r *reportRepositoryImpl) Update(ctx context.Context, rep report.Report) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_department_reports
		SET report_date = $1, reporter_id = $2, total_count = $3, followup_count = $4,
			location = $5, memo = $6, updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query,
		rep.ReportDate, rep.ReporterID, rep.TotalCount, rep.FollowupCount, rep.Location, rep.Memo, rep.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return report.ErrReportDateTaken
		}
		return fmt.Errorf("failed to update report %s: %w", rep.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// ReplaceLines implements report.ReportRepository.
func (r *reportRepositoryImpl) ReplaceLines(ctx context.Context, reportID string, lines []report.Line) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM daily_department_report_lines WHERE report_id = $1`, reportID); err != nil {
		return fmt.Errorf("failed to clear lines of report %s: %w", reportID, err)
	}
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO daily_department_report_lines
				(id, report_id, member_id, amount, count, cs_count, refugee_count, location)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, newID(), reportID, l.MemberID, l.Amount, l.Count, l.CSCount, l.RefugeeCount, l.Location)
	}

	br := q.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert report line: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close line batch: %w", err)
	}
	return nil
}

// Delete implements report.ReportRepository.
func (r *reportRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM daily_department_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// ListForDay implements report.ReportRepository.
func (r *reportRepositoryImpl) ListForDay(ctx context.Context, departmentID string, reportDate time.Time, limit int) ([]report.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT r.id, r.department_id, d.code, d.name, r.report_date, r.reporter_id,
			COALESCE(m.name, ''), r.total_count, r.followup_count, r.location, r.memo,
			r.created_at, r.updated_at,
			COALESCE(SUM(l.cs_count), 0), COALESCE(SUM(l.refugee_count), 0)
		FROM daily_department_reports r
		JOIN departments d ON d.id = r.department_id
		LEFT JOIN members m ON m.id = r.reporter_id
		LEFT JOIN daily_department_report_lines l ON l.report_id = r.id
		WHERE r.department_id = $1 AND r.report_date = $2
		GROUP BY r.id, d.code, d.name, m.name
		ORDER BY r.created_at DESC
		LIMIT $3
	`

	rows, err := q.Query(ctx, query, departmentID, reportDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for day: %w", err)
	}
	defer rows.Close()

	var reports []report.Report
	for rows.Next() {
		var rep report.Report
		if err := rows.Scan(
			&rep.ID, &rep.DepartmentID, &rep.DepartmentCode, &rep.DepartmentName, &rep.ReportDate, &rep.ReporterID,
			&rep.ReporterName, &rep.TotalCount, &rep.FollowupCount, &rep.Location, &rep.Memo,
			&rep.CreatedAt, &rep.UpdatedAt, &rep.CSCountTotal, &rep.RefugeeCountTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// ListRecent implements report.ReportRepository.
func (r *reportRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]report.Report, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, reportSelect+` ORDER BY r.report_date DESC, r.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent reports: %w", err)
	}
	defer rows.Close()

	var (
		reports []report.Report
		ids     []string
	)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
		ids = append(ids, rep.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return reports, nil
	}

	lines, err := r.listLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].Lines = lines[reports[i].ID]
		for _, l := range reports[i].Lines {
			reports[i].CSCountTotal += l.CSCount
			reports[i].RefugeeCountTotal += l.RefugeeCount
		}
	}
	return reports, nil
}

func (r *reportRepositoryImpl) listLines(ctx context.Context, reportIDs []string) (map[string][]report.Line, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT l.id, l.report_id, l.member_id, COALESCE(m.name, '-'), l.amount, l.count,
			l.cs_count, l.refugee_count, l.location, l.created_at
		FROM daily_department_report_lines l
		LEFT JOIN members m ON m.id = l.member_id
		WHERE l.report_id::text = ANY($1::text[])
		ORDER BY l.created_at, l.id
	`

	rows, err := q.Query(ctx, query, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list report lines: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]report.Line, len(reportIDs))
	for rows.Next() {
		var l report.Line
		if err := rows.Scan(&l.ID, &l.ReportID, &l.MemberID, &l.MemberName, &l.Amount, &l.Count,
			&l.CSCount, &l.RefugeeCount, &l.Location, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report line: %w", err)
		}
		result[l.ReportID] = append(result[l.ReportID], l)
	}
	return result, rows.Err()
}
