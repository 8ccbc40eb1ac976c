package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/cmlabs-hris/activity-report/internal/pkg/metrics"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

const (
	recentLimit  = 50
	// a concurrent first submission for the same day makes Create fail once
	submitAttempts = 2
)

// FormRules lists department codes with special form handling.
type FormRules struct {
	SplitCountCodes []string
	NoLocationCodes []string
}

type ReportServiceImpl struct {
	tx database.Transactor
	report.ReportRepository
	departmentRepo department.DepartmentRepository
	memberRepo     member.MemberRepository
	rules          FormRules
}

func NewReportService(
	tx database.Transactor,
	repo report.ReportRepository,
	departmentRepo department.DepartmentRepository,
	memberRepo member.MemberRepository,
	rules FormRules,
) report.ReportService {
	return &ReportServiceImpl{
		tx:               tx,
		ReportRepository: repo,
		departmentRepo:   departmentRepo,
		memberRepo:       memberRepo,
		rules:            rules,
	}
}

// RulesFor implements report.ReportService.
func (s *ReportServiceImpl) RulesFor(departmentCode string) report.Rules {
	code := strings.ToUpper(strings.TrimSpace(departmentCode))
	return report.Rules{
		SplitCounts:  validator.IsInSlice(code, s.rules.SplitCountCodes),
		ShowLocation: !validator.IsInSlice(code, s.rules.NoLocationCodes),
	}
}

func (s *ReportServiceImpl) activeDepartment(ctx context.Context, code string) (department.Department, error) {
	d, err := s.departmentRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, department.ErrDepartmentNotFound) {
			return department.Department{}, report.ErrDepartmentNotFound
		}
		return department.Department{}, err
	}
	if !d.IsActive {
		return department.Department{}, report.ErrDepartmentNotFound
	}
	return d, nil
}

// parse validates the request against the department's linked members and
// returns the header date plus the rows that become lines.
func (s *ReportServiceImpl) parse(ctx context.Context, d department.Department, req report.SubmitReportRequest) (time.Time, *string, []report.ParsedRow, error) {
	var errs validator.ValidationErrors

	date, err := req.ValidateHeader()
	if err != nil {
		var headerErrs validator.ValidationErrors
		if !errors.As(err, &headerErrs) {
			return time.Time{}, nil, nil, err
		}
		errs = append(errs, headerErrs...)
	}

	members, err := s.memberRepo.ListByDepartment(ctx, d.ID)
	if err != nil {
		return time.Time{}, nil, nil, fmt.Errorf("failed to load department members: %w", err)
	}
	allowed := make(map[string]bool, len(members))
	for _, m := range members {
		allowed[m.ID] = true
	}

	var reporterID *string
	if id := strings.TrimSpace(req.ReporterID); id != "" {
		if !allowed[id] {
			errs = append(errs, validator.ValidationError{Field: "reporter", Message: report.ErrReporterNotLinked.Error()})
		} else {
			reporterID = &id
		}
	}

	rows, err := report.ParseRows(req.Rows(), allowed, s.RulesFor(d.Code))
	if err != nil {
		var rowErrs validator.ValidationErrors
		if !errors.As(err, &rowErrs) {
			return time.Time{}, nil, nil, err
		}
		errs = append(errs, rowErrs...)
	}

	if len(errs) > 0 {
		return time.Time{}, nil, nil, errs
	}
	return date, reporterID, rows, nil
}

func linesFromRows(rows []report.ParsedRow) []report.Line {
	lines := make([]report.Line, 0, len(rows))
	for _, row := range rows {
		memberID := row.MemberID
		lines = append(lines, report.Line{
			MemberID:     &memberID,
			Amount:       row.Amount,
			Count:        row.Count,
			CSCount:      row.CSCount,
			RefugeeCount: row.RefugeeCount,
			Location:     row.Location,
		})
	}
	return lines
}

// Submit implements report.ReportService.
func (s *ReportServiceImpl) Submit(ctx context.Context, req report.SubmitReportRequest) (report.Report, error) {
	d, err := s.activeDepartment(ctx, req.DepartmentCode)
	if err != nil {
		return report.Report{}, err
	}

	date, reporterID, rows, err := s.parse(ctx, d, req)
	if err != nil {
		metrics.RecordReportSubmit(d.Code, "invalid", 0)
		return report.Report{}, err
	}
	totalCount, totalAmount, location := report.Summarize(rows)
	lines := linesFromRows(rows)

	var saved report.Report
	for attempt := 1; attempt <= submitAttempts; attempt++ {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			current, err := s.ReportRepository.GetForUpdate(ctx, d.ID, date)
			switch {
			case errors.Is(err, report.ErrReportNotFound):
				current, err = s.ReportRepository.Create(ctx, report.Report{
					DepartmentID:  d.ID,
					ReportDate:    date,
					ReporterID:    reporterID,
					TotalCount:    totalCount,
					FollowupCount: totalAmount,
					Location:      location,
					Memo:          req.Memo,
				})
				if err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				current.ReporterID = reporterID
				current.TotalCount = totalCount
				current.FollowupCount = totalAmount
				current.Location = location
				current.Memo = req.Memo
				if err := s.ReportRepository.Update(ctx, current); err != nil {
					return err
				}
			}

			if err := s.ReportRepository.ReplaceLines(ctx, current.ID, lines); err != nil {
				return err
			}
			saved, err = s.ReportRepository.GetByID(ctx, current.ID)
			return err
		})
		if !errors.Is(err, report.ErrReportDateTaken) {
			break
		}
		slog.Warn("concurrent report submission, retrying", "department", d.Code, "date", date.Format("2006-01-02"), "attempt", attempt)
	}
	if err != nil {
		metrics.RecordReportSubmit(d.Code, "error", 0)
		return report.Report{}, err
	}

	metrics.RecordReportSubmit(d.Code, "ok", len(lines))
	slog.Info("report submitted",
		"report_id", saved.ID,
		"department", d.Code,
		"date", date.Format("2006-01-02"),
		"lines", len(lines),
	)
	return saved, nil
}

// Edit implements report.ReportService.
func (s *ReportServiceImpl) Edit(ctx context.Context, id string, req report.SubmitReportRequest) (report.Report, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return report.Report{}, err
	}
	d, err := s.departmentRepo.GetByID(ctx, existing.DepartmentID)
	if err != nil {
		if errors.Is(err, department.ErrDepartmentNotFound) {
			return report.Report{}, report.ErrDepartmentNotFound
		}
		return report.Report{}, err
	}

	date, reporterID, rows, err := s.parse(ctx, d, req)
	if err != nil {
		return report.Report{}, err
	}
	totalCount, totalAmount, location := report.Summarize(rows)
	lines := linesFromRows(rows)

	var saved report.Report
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing.ReportDate = date
		existing.ReporterID = reporterID
		existing.TotalCount = totalCount
		existing.FollowupCount = totalAmount
		existing.Location = location
		existing.Memo = req.Memo
		if err := s.ReportRepository.Update(ctx, existing); err != nil {
			if errors.Is(err, report.ErrReportDateTaken) {
				return validator.ValidationErrors{{Field: "report_date", Message: report.ErrReportDateTaken.Error()}}
			}
			return err
		}
		if err := s.ReportRepository.ReplaceLines(ctx, existing.ID, lines); err != nil {
			return err
		}
		saved, err = s.ReportRepository.GetByID(ctx, existing.ID)
		return err
	})
	if err != nil {
		return report.Report{}, err
	}

	slog.Info("report edited", "report_id", saved.ID, "department", d.Code, "date", date.Format("2006-01-02"))
	return saved, nil
}

// Delete implements report.ReportService.
func (s *ReportServiceImpl) Delete(ctx context.Context, departmentCode, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.DepartmentCode != strings.ToUpper(strings.TrimSpace(departmentCode)) {
		return report.ErrReportNotFound
	}
	if err := s.ReportRepository.Delete(ctx, existing.ID); err != nil {
		return err
	}
	slog.Info("report deleted", "report_id", id, "department", existing.DepartmentCode)
	return nil
}

// GetByID implements report.ReportService.
func (s *ReportServiceImpl) GetByID(ctx context.Context, id string) (report.Report, error) {
	if !validator.IsValidUUID(id) {
		return report.Report{}, report.ErrReportNotFound
	}
	return s.ReportRepository.GetByID(ctx, id)
}

// FormContext implements report.ReportService.
func (s *ReportServiceImpl) FormContext(ctx context.Context, departmentCode string, day time.Time) (report.FormContext, error) {
	d, err := s.activeDepartment(ctx, departmentCode)
	if err != nil {
		return report.FormContext{}, err
	}

	members, err := s.memberRepo.ListByDepartment(ctx, d.ID)
	if err != nil {
		return report.FormContext{}, fmt.Errorf("failed to load department members: %w", err)
	}
	options := make([]report.MemberOption, 0, len(members))
	for _, m := range members {
		options = append(options, report.MemberOption{ID: m.ID, Name: m.Name})
	}

	recent, err := s.ReportRepository.ListForDay(ctx, d.ID, day, recentLimit)
	if err != nil {
		return report.FormContext{}, err
	}

	fc := report.FormContext{
		DepartmentID:   d.ID,
		DepartmentCode: d.Code,
		DepartmentName: d.Name,
		Rules:          s.RulesFor(d.Code),
		Members:        options,
		SelectedDate:   day,
		Recent:         recent,
	}
	if d.DefaultReporterID != nil {
		fc.DefaultReporterID = *d.DefaultReporterID
	}
	return fc, nil
}

// History implements report.ReportService.
func (s *ReportServiceImpl) History(ctx context.Context) ([]report.Report, error) {
	return s.ReportRepository.ListRecent(ctx, report.HistoryLimit)
}
