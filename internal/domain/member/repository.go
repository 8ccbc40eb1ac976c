package member

import "context"

type MemberRepository interface {
	GetByID(ctx context.Context, id string) (Member, error)
	List(ctx context.Context) ([]Member, error)
	// ListByDepartment returns members linked to departmentID ordered by name.
	ListByDepartment(ctx context.Context, departmentID string) ([]Member, error)
	LoginIDExists(ctx context.Context, loginID string) (bool, error)
	Create(ctx context.Context, newMember Member) (Member, error)
	UpdateName(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error

	IsLinked(ctx context.Context, memberID, departmentID string) (bool, error)
	AddLink(ctx context.Context, memberID, departmentID string) error
	// DeleteLinksExcept removes every link of memberID whose department is not in keep.
	DeleteLinksExcept(ctx context.Context, memberID string, keep []string) error
}
