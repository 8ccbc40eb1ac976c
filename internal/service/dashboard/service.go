package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/email"
	"github.com/cmlabs-hris/activity-report/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Options configures department rules, mail recipients and the clock.
type Options struct {
	SplitCountCodes []string
	SummaryTo       []string
	// Now returns the current time in the configured time zone.
	Now func() time.Time
}

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	departmentRepo department.DepartmentRepository
	metricRepo     target.MetricRepository
	monthRepo      target.MonthTargetRepository
	periodRepo     target.PeriodRepository
	mailer         email.EmailService
	splitCodes     map[string]bool
	summaryTo      []string
	now            func() time.Time
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	departmentRepo department.DepartmentRepository,
	metricRepo target.MetricRepository,
	monthRepo target.MonthTargetRepository,
	periodRepo target.PeriodRepository,
	mailer email.EmailService,
	opts Options,
) dashboard.DashboardService {
	split := make(map[string]bool, len(opts.SplitCountCodes))
	for _, code := range opts.SplitCountCodes {
		split[code] = true
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		departmentRepo:      departmentRepo,
		metricRepo:          metricRepo,
		monthRepo:           monthRepo,
		periodRepo:          periodRepo,
		mailer:              mailer,
		splitCodes:          split,
		summaryTo:           opts.SummaryTo,
		now:                 now,
	}
}

// baseDate returns today, or yesterday for mode "prev".
func (s *DashboardServiceImpl) baseDate(mode string) time.Time {
	today := kpi.DateOf(s.now())
	if mode == report.ModePrev {
		return today.AddDate(0, 0, -1)
	}
	return today
}

func normalizeMode(mode string) string {
	if mode == report.ModePrev {
		return report.ModePrev
	}
	return report.ModeToday
}

// GetDashboard returns the admin view. All reads run in parallel once the
// active departments are known.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, mode string) (*dashboard.DashboardResponse, error) {
	start := time.Now()
	mode = normalizeMode(mode)

	snap, err := s.collect(ctx, s.baseDate(mode), false)
	if err != nil {
		return nil, err
	}
	resp := s.buildResponse(snap)
	resp.Mode = mode

	metrics.ObserveDashboard("admin", time.Since(start))
	return resp, nil
}

// GetMailPayloads returns the mail summary for today and yesterday
func (s *DashboardServiceImpl) GetMailPayloads(ctx context.Context) (*dashboard.MailPayloads, error) {
	var payloads dashboard.MailPayloads

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.mailPayload(gCtx, report.ModeToday)
		payloads.Today = p
		return err
	})
	g.Go(func() error {
		p, err := s.mailPayload(gCtx, report.ModePrev)
		payloads.Prev = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &payloads, nil
}

// GetReportIndex returns department buttons and today's cards. When the
// current month has no targets, the latest month with targets is shown.
func (s *DashboardServiceImpl) GetReportIndex(ctx context.Context) (*dashboard.ReportIndexResponse, error) {
	start := time.Now()

	snap, err := s.collect(ctx, s.baseDate(report.ModeToday), true)
	if err != nil {
		return nil, err
	}
	resp := &dashboard.ReportIndexResponse{
		Departments:       make([]dashboard.DepartmentButton, 0, len(snap.departments)),
		DashboardResponse: *s.buildResponse(snap),
	}
	resp.Mode = report.ModeToday
	for _, d := range snap.departments {
		resp.Departments = append(resp.Departments, dashboard.DepartmentButton{Code: d.Code, Name: d.Name})
	}

	metrics.ObserveDashboard("report_index", time.Since(start))
	return resp, nil
}

// SendDailySummary mails the summary for mode to the configured recipients
func (s *DashboardServiceImpl) SendDailySummary(ctx context.Context, mode string) error {
	payload, err := s.mailPayload(ctx, normalizeMode(mode))
	if err != nil {
		return err
	}
	if s.mailer == nil {
		metrics.RecordMailSend("skipped")
		return errors.New("mail service is not configured")
	}
	if err := s.mailer.SendDailySummary(s.summaryTo, payload); err != nil {
		metrics.RecordMailSend("failed")
		return fmt.Errorf("failed to send daily summary: %w", err)
	}
	metrics.RecordMailSend("sent")
	return nil
}

func (s *DashboardServiceImpl) mailPayload(ctx context.Context, mode string) (dashboard.MailPayload, error) {
	snap, err := s.collect(ctx, s.baseDate(mode), false)
	if err != nil {
		return dashboard.MailPayload{}, err
	}
	return s.buildMailPayload(snap), nil
}
