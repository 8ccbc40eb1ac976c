package auth

import (
	"strings"

	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// Normalize trims and lower-cases the login id.
func (r *LoginRequest) Normalize() {
	r.LoginID = strings.ToLower(strings.TrimSpace(r.LoginID))
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LoginID) {
		errs = append(errs, validator.ValidationError{
			Field:   "login_id",
			Message: "login_id is required",
		})
	}
	if r.Password == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	Role      Role   `json:"role"`
	Token     string `json:"-"`
	ExpiresAt int64  `json:"expires_at"`
	Redirect  string `json:"redirect"`
}
