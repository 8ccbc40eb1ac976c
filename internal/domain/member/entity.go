package member

import "time"

type Member struct {
	ID        string
	Name      string
	LoginID   string
	Password  string
	CreatedAt time.Time
	// DepartmentIDs is populated by listing queries only.
	DepartmentIDs []string
}
