package member

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

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members map[string]member.Member
	links   map[string]map[string]bool
	next    int
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{
		members: make(map[string]member.Member),
		links:   make(map[string]map[string]bool),
		next:    500,
	}
}

func (m *mockMemberRepo) linkedIDs(memberID string) []string {
	ids := []string{}
	for id := range m.links[memberID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (member.Member, error) {
	mem, ok := m.members[id]
	if !ok {
		return member.Member{}, member.ErrMemberNotFound
	}
	mem.DepartmentIDs = m.linkedIDs(id)
	return mem, nil
}

func (m *mockMemberRepo) List(ctx context.Context) ([]member.Member, error) {
	var result []member.Member
	for id := range m.members {
		mem, _ := m.GetByID(ctx, id)
		result = append(result, mem)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMemberRepo) ListByDepartment(_ context.Context, departmentID string) ([]member.Member, error) {
	var result []member.Member
	for id, mem := range m.members {
		if m.links[id][departmentID] {
			result = append(result, mem)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMemberRepo) LoginIDExists(_ context.Context, loginID string) (bool, error) {
	for _, mem := range m.members {
		if mem.LoginID == loginID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMemberRepo) Create(_ context.Context, mem member.Member) (member.Member, error) {
	m.next++
	mem.ID = testID(m.next)
	m.members[mem.ID] = mem
	return mem, nil
}

func (m *mockMemberRepo) UpdateName(_ context.Context, id, name string) error {
	mem, ok := m.members[id]
	if !ok {
		return member.ErrMemberNotFound
	}
	mem.Name = name
	m.members[id] = mem
	return nil
}

func (m *mockMemberRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.members[id]; !ok {
		return member.ErrMemberNotFound
	}
	delete(m.members, id)
	delete(m.links, id)
	return nil
}

func (m *mockMemberRepo) IsLinked(_ context.Context, memberID, departmentID string) (bool, error) {
	return m.links[memberID][departmentID], nil
}

func (m *mockMemberRepo) AddLink(_ context.Context, memberID, departmentID string) error {
	if m.links[memberID] == nil {
		m.links[memberID] = make(map[string]bool)
	}
	m.links[memberID][departmentID] = true
	return nil
}

func (m *mockMemberRepo) DeleteLinksExcept(_ context.Context, memberID string, keep []string) error {
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	for id := range m.links[memberID] {
		if !keepSet[id] {
			delete(m.links[memberID], id)
		}
	}
	return nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	department.DepartmentRepository
	departments map[string]department.Department
}

func newMockDepartmentRepo(ds ...department.Department) *mockDepartmentRepo {
	m := &mockDepartmentRepo{departments: make(map[string]department.Department)}
	for _, d := range ds {
		m.departments[d.ID] = d
	}
	return m
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (department.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (m *mockDepartmentRepo) ClearDefaultReporter(_ context.Context, memberID string, keep []string) error {
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	for id, d := range m.departments {
		if d.DefaultReporterID != nil && *d.DefaultReporterID == memberID && !keepSet[id] {
			d.DefaultReporterID = nil
			m.departments[id] = d
		}
	}
	return nil
}
