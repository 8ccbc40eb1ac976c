package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"golang.org/x/sync/errgroup"
)

// snapshot is every figure the views need for one base date.
type snapshot struct {
	day         time.Time
	departments []department.Department
	codes       []string

	reports      []dashboard.DayReport
	memberTotals []dashboard.MemberLineTotal
	metrics      map[string][]kpi.MetricDef

	month        time.Time
	monthTargets map[string]map[string]int64
	monthActuals map[string]kpi.Totals

	period        *target.Period
	periodTargets map[string]map[string]int64
	periodActuals map[string]kpi.Totals
}

func (s *DashboardServiceImpl) collect(ctx context.Context, day time.Time, monthFallback bool) (*snapshot, error) {
	departments, err := s.departmentRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	snap := &snapshot{
		day:           day,
		departments:   departments,
		codes:         make([]string, 0, len(departments)),
		metrics:       make(map[string][]kpi.MetricDef),
		monthTargets:  make(map[string]map[string]int64),
		periodTargets: make(map[string]map[string]int64),
	}
	for _, d := range departments {
		snap.codes = append(snap.codes, d.Code)
	}

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Report headers of the day
	g.Go(func() error {
		reports, err := s.ListDayReports(gCtx, day, snap.codes)
		snap.reports = reports
		return err
	})

	// 2. Member line totals of the day
	g.Go(func() error {
		totals, err := s.ListDayMemberTotals(gCtx, day, snap.codes)
		snap.memberTotals = totals
		return err
	})

	// 3. Active metrics per department code
	g.Go(func() error {
		active, err := s.metricRepo.ListActive(gCtx)
		if err != nil {
			return err
		}
		for _, m := range active {
			snap.metrics[m.DepartmentCode] = append(snap.metrics[m.DepartmentCode], m.Def())
		}
		return nil
	})

	// 4. Month targets and actuals
	g.Go(func() error {
		month := kpi.MonthStart(day)
		values, err := s.monthRepo.ListByMonth(gCtx, month)
		if err != nil {
			return err
		}
		if monthFallback && len(values) == 0 {
			latest, ok, err := s.monthRepo.LatestMonth(gCtx)
			if err != nil {
				return err
			}
			if ok {
				month = kpi.MonthStart(latest)
				if values, err = s.monthRepo.ListByMonth(gCtx, month); err != nil {
					return err
				}
			}
		}
		for _, v := range values {
			setTarget(snap.monthTargets, v.DepartmentCode, v.MetricID, v.Value)
		}
		snap.month = month

		actuals, err := s.CollectActualTotals(gCtx, month, kpi.MonthEnd(month), snap.codes)
		snap.monthActuals = actuals
		return err
	})

	// 5. Current period: the one covering day, else the latest
	g.Go(func() error {
		p, err := s.periodRepo.FindCovering(gCtx, day)
		if errors.Is(err, target.ErrPeriodNotFound) {
			p, err = s.periodRepo.Latest(gCtx)
		}
		switch {
		case errors.Is(err, target.ErrPeriodNotFound):
			actuals, err := s.CollectActualTotals(gCtx, day, day, snap.codes)
			snap.periodActuals = actuals
			return err
		case err != nil:
			return err
		}
		snap.period = &p

		values, err := s.periodRepo.ListValues(gCtx, p.ID)
		if err != nil {
			return err
		}
		for _, v := range values {
			setTarget(snap.periodTargets, v.DepartmentCode, v.MetricID, v.Value)
		}
		actuals, err := s.CollectActualTotals(gCtx, p.StartDate, p.EndDate, snap.codes)
		snap.periodActuals = actuals
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func setTarget(m map[string]map[string]int64, code, metricID string, value int64) {
	if m[code] == nil {
		m[code] = make(map[string]int64)
	}
	m[code][metricID] = value
}

// dailyTotals sums report headers per code; cs and refugee counts come from lines.
func (snap *snapshot) dailyTotals() map[string]kpi.Totals {
	totals := make(map[string]kpi.Totals, len(snap.codes))
	for _, code := range snap.codes {
		totals[code] = kpi.Totals{}
	}
	for _, r := range snap.reports {
		t := totals[r.DepartmentCode]
		t.Count += r.TotalCount
		t.Amount += r.FollowupCount
		totals[r.DepartmentCode] = t
	}
	for _, m := range snap.memberTotals {
		t := totals[m.DepartmentCode]
		t.CSCount += m.Totals.CSCount
		t.RefugeeCount += m.Totals.RefugeeCount
		totals[m.DepartmentCode] = t
	}
	return totals
}

// latestReports keeps the newest report per code.
func (snap *snapshot) latestReports() map[string]dashboard.DayReport {
	latest := make(map[string]dashboard.DayReport, len(snap.reports))
	for _, r := range snap.reports {
		if _, ok := latest[r.DepartmentCode]; !ok {
			latest[r.DepartmentCode] = r
		}
	}
	return latest
}

// memberRows returns the sorted member totals of one code.
func (snap *snapshot) memberRows(code string) []kpi.MemberTotal {
	rows := []kpi.MemberTotal{}
	for _, m := range snap.memberTotals {
		if m.DepartmentCode != code {
			continue
		}
		rows = append(rows, kpi.MemberTotal{
			MemberName:   m.MemberName,
			Count:        m.Totals.Count,
			Amount:       m.Totals.Amount,
			CSCount:      m.Totals.CSCount,
			RefugeeCount: m.Totals.RefugeeCount,
		})
	}
	kpi.SortMemberTotals(rows)
	return rows
}

func (snap *snapshot) monthDetails(code string) []kpi.DetailRow {
	return kpi.DetailRows(snap.metrics[code], snap.monthTargets[code], snap.monthActuals[code])
}

func (snap *snapshot) periodDetails(code string) []kpi.DetailRow {
	return kpi.DetailRows(snap.metrics[code], snap.periodTargets[code], snap.periodActuals[code])
}
