package member

import "errors"

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrLoginIDExists       = errors.New("login id already exists")
	ErrDepartmentNotActive = errors.New("department not found or inactive")
)
