package department

import "errors"

var (
	ErrDepartmentNotFound      = errors.New("department not found")
	ErrDepartmentCodeExists    = errors.New("department code already exists")
	ErrReporterNotInDepartment = errors.New("default reporter must be a member of the department")
)
