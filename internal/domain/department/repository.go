package department

import "context"

type DepartmentRepository interface {
	GetByID(ctx context.Context, id string) (Department, error)
	GetByCode(ctx context.Context, code string) (Department, error)
	// List returns departments ordered by code.
	List(ctx context.Context, activeOnly bool) ([]Department, error)
	ExistsByCode(ctx context.Context, code string, excludeID *string) (bool, error)
	Create(ctx context.Context, newDepartment Department) (Department, error)
	Update(ctx context.Context, department Department) error
	Delete(ctx context.Context, id string) error
	// ClearDefaultReporter unsets memberID as default reporter of every
	// department not listed in keep.
	ClearDefaultReporter(ctx context.Context, memberID string, keep []string) error
	Count(ctx context.Context) (int64, error)
}
