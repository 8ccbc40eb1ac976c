package department

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
)

func testID(n int) string {
	return fmt.Sprintf("0190a000-0000-7000-8000-%012d", n)
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	departments map[string]department.Department
	next        int
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{departments: make(map[string]department.Department), next: 100}
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

func (m *mockDepartmentRepo) List(_ context.Context, activeOnly bool) ([]department.Department, error) {
	var result []department.Department
	for _, d := range m.departments {
		if !activeOnly || d.IsActive {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockDepartmentRepo) ExistsByCode(_ context.Context, code string, excludeID *string) (bool, error) {
	for _, d := range m.departments {
		if d.Code == code && (excludeID == nil || d.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDepartmentRepo) Create(_ context.Context, d department.Department) (department.Department, error) {
	m.next++
	d.ID = testID(m.next)
	m.departments[d.ID] = d
	return d, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, d department.Department) error {
	if _, ok := m.departments[d.ID]; !ok {
		return department.ErrDepartmentNotFound
	}
	m.departments[d.ID] = d
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.departments[id]; !ok {
		return department.ErrDepartmentNotFound
	}
	delete(m.departments, id)
	return nil
}

func (m *mockDepartmentRepo) ClearDefaultReporter(_ context.Context, memberID string, keep []string) error {
	for id, d := range m.departments {
		if d.DefaultReporterID == nil || *d.DefaultReporterID != memberID {
			continue
		}
		kept := false
		for _, k := range keep {
			kept = kept || k == id
		}
		if !kept {
			d.DefaultReporterID = nil
			m.departments[id] = d
		}
	}
	return nil
}

func (m *mockDepartmentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.departments)), nil
}

// ── Mock MemberRepository (links only) ──

type mockMemberRepo struct {
	member.MemberRepository
	links map[string]map[string]bool
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{links: make(map[string]map[string]bool)}
}

func (m *mockMemberRepo) link(memberID, departmentID string) {
	if m.links[memberID] == nil {
		m.links[memberID] = make(map[string]bool)
	}
	m.links[memberID][departmentID] = true
}

func (m *mockMemberRepo) IsLinked(_ context.Context, memberID, departmentID string) (bool, error) {
	return m.links[memberID][departmentID], nil
}
