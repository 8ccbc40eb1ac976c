package department

import "context"

type DepartmentService interface {
	List(ctx context.Context, activeOnly bool) ([]Department, error)
	GetByID(ctx context.Context, id string) (Department, error)
	GetByCode(ctx context.Context, code string) (Department, error)
	Save(ctx context.Context, req SaveDepartmentRequest) (Department, error)
	Delete(ctx context.Context, id string) error
}
