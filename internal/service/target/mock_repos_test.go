package target

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
)

func testID(n int) string {
	return fmt.Sprintf("0190a000-0000-7000-8000-%012d", n)
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var nextID = 1000

func newTestID() string {
	nextID++
	return testID(nextID)
}

// ── Mock MetricRepository ──

type mockMetricRepo struct {
	metrics map[string]target.Metric
}

func newMockMetricRepo(ms ...target.Metric) *mockMetricRepo {
	m := &mockMetricRepo{metrics: make(map[string]target.Metric)}
	for _, metric := range ms {
		m.metrics[metric.ID] = metric
	}
	return m
}

func (m *mockMetricRepo) sorted(filter func(target.Metric) bool) []target.Metric {
	var result []target.Metric
	for _, metric := range m.metrics {
		if filter(metric) {
			result = append(result, metric)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DepartmentID != result[j].DepartmentID {
			return result[i].DepartmentID < result[j].DepartmentID
		}
		if result[i].DisplayOrder != result[j].DisplayOrder {
			return result[i].DisplayOrder < result[j].DisplayOrder
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *mockMetricRepo) GetByID(_ context.Context, id string) (target.Metric, error) {
	if metric, ok := m.metrics[id]; ok {
		return metric, nil
	}
	return target.Metric{}, target.ErrMetricNotFound
}

func (m *mockMetricRepo) ListByDepartment(_ context.Context, departmentID string, activeOnly bool) ([]target.Metric, error) {
	return m.sorted(func(metric target.Metric) bool {
		return metric.DepartmentID == departmentID && (!activeOnly || metric.IsActive)
	}), nil
}

func (m *mockMetricRepo) ListActive(_ context.Context) ([]target.Metric, error) {
	return m.sorted(func(metric target.Metric) bool { return metric.IsActive }), nil
}

func (m *mockMetricRepo) ExistsByCode(_ context.Context, departmentID, code string, excludeID *string) (bool, error) {
	for _, metric := range m.metrics {
		if metric.DepartmentID == departmentID && metric.Code == code && (excludeID == nil || metric.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMetricRepo) Create(_ context.Context, metric target.Metric) (target.Metric, error) {
	metric.ID = newTestID()
	m.metrics[metric.ID] = metric
	return metric, nil
}

func (m *mockMetricRepo) Update(_ context.Context, metric target.Metric) error {
	if _, ok := m.metrics[metric.ID]; !ok {
		return target.ErrMetricNotFound
	}
	m.metrics[metric.ID] = metric
	return nil
}

func (m *mockMetricRepo) SetActive(_ context.Context, id string, active bool) error {
	metric, ok := m.metrics[id]
	if !ok {
		return target.ErrMetricNotFound
	}
	metric.IsActive = active
	m.metrics[id] = metric
	return nil
}

func (m *mockMetricRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.metrics)), nil
}

// ── Mock MonthTargetRepository ──

type mockMonthRepo struct {
	values map[string]target.MonthValue
}

func newMockMonthRepo() *mockMonthRepo {
	return &mockMonthRepo{values: make(map[string]target.MonthValue)}
}

func monthKey(deptID string, month time.Time, metricID string) string {
	return deptID + "|" + month.Format("2006-01") + "|" + metricID
}

func (m *mockMonthRepo) Upsert(_ context.Context, v target.MonthValue) error {
	m.values[monthKey(v.DepartmentID, v.TargetMonth, v.MetricID)] = v
	return nil
}

func (m *mockMonthRepo) ListByMonth(_ context.Context, month time.Time) ([]target.MonthValue, error) {
	var result []target.MonthValue
	for _, v := range m.values {
		if v.TargetMonth.Equal(month) {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockMonthRepo) LatestMonth(_ context.Context) (time.Time, bool, error) {
	var latest time.Time
	for _, v := range m.values {
		if v.TargetMonth.After(latest) {
			latest = v.TargetMonth
		}
	}
	return latest, !latest.IsZero(), nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods map[string]target.Period
	values  map[string]target.PeriodValue
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{
		periods: make(map[string]target.Period),
		values:  make(map[string]target.PeriodValue),
	}
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (target.Period, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return target.Period{}, target.ErrPeriodNotFound
}

func (m *mockPeriodRepo) GetByMonthAndName(_ context.Context, month time.Time, name string) (target.Period, error) {
	for _, p := range m.periods {
		if p.Month.Equal(month) && p.Name == name {
			return p, nil
		}
	}
	return target.Period{}, target.ErrPeriodNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]target.Period, error) {
	result := make([]target.Period, 0, len(m.periods))
	for _, p := range m.periods {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Month.Equal(result[j].Month) {
			return result[i].Month.After(result[j].Month)
		}
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockPeriodRepo) FindCovering(ctx context.Context, day time.Time) (target.Period, error) {
	periods, _ := m.List(ctx)
	for _, p := range periods {
		if kpi.Overlaps(p.StartDate, p.EndDate, day, day) {
			return p, nil
		}
	}
	return target.Period{}, target.ErrPeriodNotFound
}

func (m *mockPeriodRepo) Latest(ctx context.Context) (target.Period, error) {
	periods, _ := m.List(ctx)
	if len(periods) == 0 {
		return target.Period{}, target.ErrPeriodNotFound
	}
	return periods[0], nil
}

func (m *mockPeriodRepo) ListOverlapping(ctx context.Context, start, end time.Time, excludeIDs []string) ([]target.Period, error) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	periods, _ := m.List(ctx)
	var result []target.Period
	for _, p := range periods {
		if !excluded[p.ID] && kpi.Overlaps(start, end, p.StartDate, p.EndDate) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPeriodRepo) Create(_ context.Context, p target.Period) (target.Period, error) {
	p.ID = newTestID()
	m.periods[p.ID] = p
	return p, nil
}

func (m *mockPeriodRepo) Update(_ context.Context, p target.Period) error {
	if _, ok := m.periods[p.ID]; !ok {
		return target.ErrPeriodNotFound
	}
	m.periods[p.ID] = p
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.periods[id]; !ok {
		return target.ErrPeriodNotFound
	}
	delete(m.periods, id)
	for k, v := range m.values {
		if v.PeriodID == id {
			delete(m.values, k)
		}
	}
	return nil
}

func (m *mockPeriodRepo) UpsertValue(_ context.Context, v target.PeriodValue) error {
	m.values[v.PeriodID+"|"+v.DepartmentID+"|"+v.MetricID] = v
	return nil
}

func (m *mockPeriodRepo) ListValues(_ context.Context, periodID string) ([]target.PeriodValue, error) {
	var result []target.PeriodValue
	for _, v := range m.values {
		if v.PeriodID == periodID {
			result = append(result, v)
		}
	}
	return result, nil
}

// ── Mock DepartmentRepository (lookups only) ──

type mockDepartmentRepo struct {
	department.DepartmentRepository
	departments []department.Department
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (department.Department, error) {
	for _, d := range m.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context, activeOnly bool) ([]department.Department, error) {
	var result []department.Department
	for _, d := range m.departments {
		if !activeOnly || d.IsActive {
			result = append(result, d)
		}
	}
	return result, nil
}
