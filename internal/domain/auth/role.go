package auth

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReport Role = "report"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleReport
}

// HomePath is where a freshly logged-in role lands.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/dashboard/"
	}
	return "/reports/"
}
