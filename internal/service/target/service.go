package target

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

type TargetServiceImpl struct {
	tx             database.Transactor
	metricRepo     target.MetricRepository
	monthRepo      target.MonthTargetRepository
	periodRepo     target.PeriodRepository
	departmentRepo department.DepartmentRepository
	now            func() time.Time
}

// NewTargetService builds the service. now supplies "today" in the configured time zone.
func NewTargetService(
	tx database.Transactor,
	metricRepo target.MetricRepository,
	monthRepo target.MonthTargetRepository,
	periodRepo target.PeriodRepository,
	departmentRepo department.DepartmentRepository,
	now func() time.Time,
) target.TargetService {
	if now == nil {
		now = time.Now
	}
	return &TargetServiceImpl{
		tx:             tx,
		metricRepo:     metricRepo,
		monthRepo:      monthRepo,
		periodRepo:     periodRepo,
		departmentRepo: departmentRepo,
		now:            now,
	}
}

// ListMetrics returns the department's metrics, inactive included. An empty
// departmentID lists every department's metrics in department code order.
func (s *TargetServiceImpl) ListMetrics(ctx context.Context, departmentID string) ([]target.Metric, error) {
	if departmentID != "" {
		if !validator.IsValidUUID(departmentID) {
			return nil, department.ErrDepartmentNotFound
		}
		return s.metricRepo.ListByDepartment(ctx, departmentID, false)
	}

	departments, err := s.departmentRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	var all []target.Metric
	for _, d := range departments {
		metrics, err := s.metricRepo.ListByDepartment(ctx, d.ID, false)
		if err != nil {
			return nil, err
		}
		all = append(all, metrics...)
	}
	return all, nil
}

func (s *TargetServiceImpl) GetMetric(ctx context.Context, id string) (target.Metric, error) {
	if !validator.IsValidUUID(id) {
		return target.Metric{}, target.ErrMetricNotFound
	}
	return s.metricRepo.GetByID(ctx, id)
}

func (s *TargetServiceImpl) SaveMetric(ctx context.Context, req target.SaveMetricRequest) (target.Metric, error) {
	req.Normalize()
	order, err := req.Validate()
	if err != nil {
		return target.Metric{}, err
	}
	if !validator.IsValidUUID(req.DepartmentID) {
		return target.Metric{}, validator.ValidationErrors{{Field: "department", Message: department.ErrDepartmentNotFound.Error()}}
	}

	var saved target.Metric
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := s.departmentRepo.GetByID(ctx, req.DepartmentID)
		if err != nil {
			return validator.ValidationErrors{{Field: "department", Message: err.Error()}}
		}

		var excludeID *string
		if req.ID != "" {
			excludeID = &req.ID
		}
		exists, err := s.metricRepo.ExistsByCode(ctx, d.ID, req.Code, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return validator.ValidationErrors{{Field: "code", Message: target.ErrMetricCodeExists.Error()}}
		}

		if req.ID == "" {
			saved, err = s.metricRepo.Create(ctx, target.Metric{
				DepartmentID: d.ID,
				Code:         req.Code,
				Label:        req.Label,
				Unit:         req.Unit,
				DisplayOrder: order,
				IsActive:     req.IsActive,
			})
			if err != nil {
				return err
			}
		} else {
			current, err := s.GetMetric(ctx, req.ID)
			if err != nil {
				return err
			}
			current.DepartmentID = d.ID
			current.Code = req.Code
			current.Label = req.Label
			current.Unit = req.Unit
			current.DisplayOrder = order
			current.IsActive = req.IsActive
			if err := s.metricRepo.Update(ctx, current); err != nil {
				return err
			}
			saved = current
		}
		saved.DepartmentCode = d.Code
		return nil
	})
	if err != nil {
		return target.Metric{}, err
	}

	slog.Info("target metric saved", "metric_id", saved.ID, "department", saved.DepartmentCode, "code", saved.Code)
	return saved, nil
}

func (s *TargetServiceImpl) ToggleMetric(ctx context.Context, id string) (target.Metric, error) {
	m, err := s.GetMetric(ctx, id)
	if err != nil {
		return target.Metric{}, err
	}
	m.IsActive = !m.IsActive
	if err := s.metricRepo.SetActive(ctx, m.ID, m.IsActive); err != nil {
		return target.Metric{}, err
	}
	slog.Info("target metric toggled", "metric_id", m.ID, "active", m.IsActive)
	return m, nil
}

// departmentTargets lays out every active department with its active
// metrics, filling values from lookup and naming each form field.
func (s *TargetServiceImpl) departmentTargets(
	ctx context.Context,
	lookup func(departmentID, metricID string) int64,
	fieldName func(departmentID, metricID string) string,
) ([]target.DepartmentTargets, error) {
	departments, err := s.departmentRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	metrics, err := s.metricRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	byDepartment := make(map[string][]target.Metric)
	for _, m := range metrics {
		byDepartment[m.DepartmentID] = append(byDepartment[m.DepartmentID], m)
	}

	rows := make([]target.DepartmentTargets, 0, len(departments))
	for _, d := range departments {
		row := target.DepartmentTargets{
			DepartmentID:   d.ID,
			DepartmentCode: d.Code,
			DepartmentName: d.Name,
			Metrics:        []target.MetricTarget{},
		}
		for _, m := range byDepartment[d.ID] {
			row.Metrics = append(row.Metrics, target.MetricTarget{
				Metric:    m,
				Value:     lookup(d.ID, m.ID),
				FieldName: fieldName(d.ID, m.ID),
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *TargetServiceImpl) MonthTargets(ctx context.Context, month time.Time) (target.MonthTargetsView, error) {
	month = kpi.MonthStart(month)
	values, err := s.monthRepo.ListByMonth(ctx, month)
	if err != nil {
		return target.MonthTargetsView{}, err
	}
	stored := make(map[string]int64, len(values))
	for _, v := range values {
		stored[v.DepartmentID+":"+v.MetricID] = v.Value
	}

	departments, err := s.departmentTargets(ctx,
		func(deptID, metricID string) int64 { return stored[deptID+":"+metricID] },
		func(_, metricID string) string { return "metric_" + metricID },
	)
	if err != nil {
		return target.MonthTargetsView{}, err
	}

	return target.MonthTargetsView{
		Month:       month,
		Status:      kpi.MonthStatus(month, s.now()),
		Departments: departments,
	}, nil
}

// SaveMonthTargets upserts a value for every active metric present in the
// request. Keys that are not active metrics are ignored.
func (s *TargetServiceImpl) SaveMonthTargets(ctx context.Context, req target.SaveMonthTargetsRequest) error {
	month, values, err := req.Validate()
	if err != nil {
		return err
	}
	status := kpi.MonthStatus(month, s.now())

	saved := 0
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		metrics, err := s.metricRepo.ListActive(ctx)
		if err != nil {
			return err
		}
		for _, m := range metrics {
			v, ok := values[m.ID]
			if !ok {
				continue
			}
			if err := s.monthRepo.Upsert(ctx, target.MonthValue{
				DepartmentID: m.DepartmentID,
				TargetMonth:  month,
				MetricID:     m.ID,
				Value:        v,
				Status:       status,
			}); err != nil {
				return fmt.Errorf("failed to save month target for metric %s: %w", m.ID, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("month targets saved", "month", month.Format("2006-01"), "status", status, "values", saved)
	return nil
}

func (s *TargetServiceImpl) withStatus(p target.Period) target.Period {
	p.Status = kpi.PeriodStatus(p.StartDate, p.EndDate, s.now())
	return p
}

// ListPeriods returns every period with its status recomputed for today.
func (s *TargetServiceImpl) ListPeriods(ctx context.Context) ([]target.Period, error) {
	periods, err := s.periodRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range periods {
		periods[i] = s.withStatus(periods[i])
	}
	return periods, nil
}

// PeriodTargets shows periodID, or when empty the period covering today,
// falling back to the first listed period.
func (s *TargetServiceImpl) PeriodTargets(ctx context.Context, periodID string) (target.PeriodTargetsView, error) {
	periods, err := s.ListPeriods(ctx)
	if err != nil {
		return target.PeriodTargetsView{}, err
	}
	view := target.PeriodTargetsView{Periods: periods}

	var selected *target.Period
	if periodID != "" {
		for i := range periods {
			if periods[i].ID == periodID {
				selected = &periods[i]
				break
			}
		}
		if selected == nil {
			return target.PeriodTargetsView{}, target.ErrPeriodNotFound
		}
	} else if len(periods) > 0 {
		for i := range periods {
			if periods[i].Status == kpi.StatusActive {
				selected = &periods[i]
				break
			}
		}
		if selected == nil {
			selected = &periods[0]
		}
	}
	if selected == nil {
		return view, nil
	}
	view.Selected = selected

	values, err := s.periodRepo.ListValues(ctx, selected.ID)
	if err != nil {
		return target.PeriodTargetsView{}, err
	}
	stored := make(map[string]int64, len(values))
	for _, v := range values {
		stored[target.PeriodValueKey{DepartmentID: v.DepartmentID, MetricID: v.MetricID}.String()] = v.Value
	}

	view.Departments, err = s.departmentTargets(ctx,
		func(deptID, metricID string) int64 {
			return stored[target.PeriodValueKey{DepartmentID: deptID, MetricID: metricID}.String()]
		},
		func(deptID, metricID string) string {
			return "target_" + target.PeriodValueKey{DepartmentID: deptID, MetricID: metricID}.String()
		},
	)
	if err != nil {
		return target.PeriodTargetsView{}, err
	}
	return view, nil
}

// SavePeriod creates or updates the period named by month and sequence.
//
// A period with the same month and name is updated in place. Any other
// period sharing a day with the new range rejects the save with an
// *target.OverlapError, unless ForceOverwrite names one of the overlapping
// periods in ConflictPeriodID. That period then takes the new month, name
// and range and keeps its target values.
func (s *TargetServiceImpl) SavePeriod(ctx context.Context, req target.SavePeriodRequest) (target.Period, error) {
	in, err := req.Validate()
	if err != nil {
		return target.Period{}, err
	}
	status := kpi.PeriodStatus(in.StartDate, in.EndDate, s.now())

	var saved target.Period
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sameName, err := s.periodRepo.GetByMonthAndName(ctx, in.Month, in.Name)
		found := err == nil
		if err != nil && !errors.Is(err, target.ErrPeriodNotFound) {
			return err
		}

		var exclude []string
		if found {
			exclude = append(exclude, sameName.ID)
		}
		candidates, err := s.periodRepo.ListOverlapping(ctx, in.StartDate, in.EndDate, exclude)
		if err != nil {
			return err
		}
		var overlapping []target.Period
		for _, p := range candidates {
			if kpi.Overlaps(in.StartDate, in.EndDate, p.StartDate, p.EndDate) {
				overlapping = append(overlapping, p)
			}
		}

		apply := func(p target.Period) target.Period {
			p.Month = in.Month
			p.Name = in.Name
			p.StartDate = in.StartDate
			p.EndDate = in.EndDate
			p.Status = status
			return p
		}

		if len(overlapping) == 0 {
			if found {
				saved = apply(sameName)
				return s.periodRepo.Update(ctx, saved)
			}
			saved, err = s.periodRepo.Create(ctx, apply(target.Period{}))
			return err
		}

		if !req.ForceOverwrite {
			return &target.OverlapError{Conflicts: overlapping}
		}

		var (
			conflict *target.Period
			others   []target.Period
		)
		for i := range overlapping {
			if overlapping[i].ID == req.ConflictPeriodID {
				conflict = &overlapping[i]
			} else {
				others = append(others, overlapping[i])
			}
		}
		if conflict == nil {
			return target.ErrConflictPeriodRequired
		}
		if len(others) > 0 {
			return &target.OverlapError{Conflicts: others}
		}
		if found {
			return target.ErrPeriodNameTaken
		}

		saved = apply(*conflict)
		slog.Warn("period overwritten", "period_id", saved.ID, "name", saved.Name)
		return s.periodRepo.Update(ctx, saved)
	})
	if err != nil {
		return target.Period{}, err
	}

	slog.Info("period saved", "period_id", saved.ID, "name", saved.Name, "status", saved.Status)
	return saved, nil
}

// SavePeriodTargets upserts values for active metrics of their own department.
func (s *TargetServiceImpl) SavePeriodTargets(ctx context.Context, req target.SavePeriodTargetsRequest) error {
	values, err := req.Validate()
	if err != nil {
		return err
	}
	if !validator.IsValidUUID(req.PeriodID) {
		return target.ErrPeriodNotFound
	}

	saved := 0
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.periodRepo.GetByID(ctx, req.PeriodID); err != nil {
			return err
		}
		metrics, err := s.metricRepo.ListActive(ctx)
		if err != nil {
			return err
		}
		owner := make(map[string]string, len(metrics))
		for _, m := range metrics {
			owner[m.ID] = m.DepartmentID
		}

		for key, v := range values {
			if owner[key.MetricID] != key.DepartmentID {
				slog.Debug("skipping period target for inactive or foreign metric", "key", key.String())
				continue
			}
			if err := s.periodRepo.UpsertValue(ctx, target.PeriodValue{
				PeriodID:     req.PeriodID,
				DepartmentID: key.DepartmentID,
				MetricID:     key.MetricID,
				Value:        v,
			}); err != nil {
				return fmt.Errorf("failed to save period target %s: %w", key, err)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("period targets saved", "period_id", req.PeriodID, "values", saved)
	return nil
}

func (s *TargetServiceImpl) DeletePeriod(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return target.ErrPeriodNotFound
	}
	if err := s.periodRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("period deleted", "period_id", id)
	return nil
}
