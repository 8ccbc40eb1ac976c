package member

import "context"

type MemberService interface {
	List(ctx context.Context) ([]Member, error)
	GetByID(ctx context.Context, id string) (Member, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]Member, error)
	Save(ctx context.Context, req SaveMemberRequest) (Member, error)
	Delete(ctx context.Context, id string) error
}
