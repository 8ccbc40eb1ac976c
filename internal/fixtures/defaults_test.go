package fixtures

import (
	"context"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memDepartments struct {
	department.DepartmentRepository
	items []department.Department
}

func (m *memDepartments) Count(context.Context) (int64, error) { return int64(len(m.items)), nil }

func (m *memDepartments) GetByCode(_ context.Context, code string) (department.Department, error) {
	for _, d := range m.items {
		if d.Code == code {
			return d, nil
		}
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (m *memDepartments) Create(_ context.Context, d department.Department) (department.Department, error) {
	d.ID = fmt.Sprintf("dept-%d", len(m.items)+1)
	m.items = append(m.items, d)
	return d, nil
}

func (m *memDepartments) Update(_ context.Context, d department.Department) error {
	for i := range m.items {
		if m.items[i].ID == d.ID {
			m.items[i] = d
			return nil
		}
	}
	return department.ErrDepartmentNotFound
}

type memMetrics struct {
	target.MetricRepository
	items []target.Metric
}

func (m *memMetrics) Count(context.Context) (int64, error) { return int64(len(m.items)), nil }

func (m *memMetrics) ListByDepartment(_ context.Context, departmentID string, _ bool) ([]target.Metric, error) {
	var result []target.Metric
	for _, metric := range m.items {
		if metric.DepartmentID == departmentID {
			result = append(result, metric)
		}
	}
	return result, nil
}

func (m *memMetrics) Create(_ context.Context, metric target.Metric) (target.Metric, error) {
	metric.ID = fmt.Sprintf("metric-%d", len(m.items)+1)
	m.items = append(m.items, metric)
	return metric, nil
}

func (m *memMetrics) Update(_ context.Context, metric target.Metric) error {
	for i := range m.items {
		if m.items[i].ID == metric.ID {
			m.items[i] = metric
			return nil
		}
	}
	return target.ErrMetricNotFound
}

func TestLoadDefaults_Embedded(t *testing.T) {
	d, err := LoadDefaults("")
	require.NoError(t, err)

	require.Len(t, d.Departments, 4)
	assert.Equal(t, "UN", d.Departments[0].Code)
	assert.Equal(t, []MetricDefault{
		{Code: "cs_count", Label: "CS件数", Unit: "件"},
		{Code: "refugee_count", Label: "難民支援件数", Unit: "件"},
	}, d.Departments[1].Metrics)
	assert.Equal(t, "Style2", d.Departments[3].Name)
}

func TestParseDefaults_RequiresCode(t *testing.T) {
	_, err := ParseDefaults([]byte("departments:\n  - name: Nameless\n"))
	assert.Error(t, err)
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	d, err := LoadDefaults("")
	require.NoError(t, err)

	depts := &memDepartments{}
	metrics := &memMetrics{}
	seeder := NewSeeder(passthroughTx{}, depts, metrics)
	ctx := context.Background()

	result, err := seeder.Seed(ctx, d, false)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{CreatedDepartments: 4, CreatedMetrics: 6}, result)
	assert.Equal(t, 2, metrics.items[1].DisplayOrder)

	again, err := seeder.Seed(ctx, d, false)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, depts.items, 4)
}

func TestSeed_ForceUpserts(t *testing.T) {
	d, err := LoadDefaults("")
	require.NoError(t, err)

	depts := &memDepartments{items: []department.Department{{ID: "dept-x", Code: "UN", Name: "Old name", IsActive: false}}}
	metrics := &memMetrics{items: []target.Metric{{ID: "metric-x", DepartmentID: "dept-x", Code: "amount", Label: "Old", IsActive: false}}}
	seeder := NewSeeder(passthroughTx{}, depts, metrics)

	result, err := seeder.Seed(context.Background(), d, true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.CreatedDepartments)
	assert.Equal(t, 5, result.CreatedMetrics)

	assert.Equal(t, "UN", depts.items[0].Name)
	assert.True(t, depts.items[0].IsActive)
	assert.Equal(t, "金額", metrics.items[0].Label)
	assert.True(t, metrics.items[0].IsActive)
	assert.Equal(t, 2, metrics.items[0].DisplayOrder)
}
