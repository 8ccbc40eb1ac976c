package member

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

type MemberResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	LoginID       string    `json:"login_id"`
	DepartmentIDs []string  `json:"department_ids"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToResponse(m Member) MemberResponse {
	ids := m.DepartmentIDs
	if ids == nil {
		ids = []string{}
	}
	return MemberResponse{
		ID:            m.ID,
		Name:          m.Name,
		LoginID:       m.LoginID,
		DepartmentIDs: ids,
		CreatedAt:     m.CreatedAt,
	}
}

// SaveMemberRequest creates a member when ID is empty and renames it otherwise.
// DepartmentIDs replaces the member's full set of department links.
type SaveMemberRequest struct {
	ID            string
	Name          string
	LoginID       string
	Password      string
	DepartmentIDs []string
}

func (r *SaveMemberRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.LoginID = strings.TrimSpace(r.LoginID)

	seen := make(map[string]bool, len(r.DepartmentIDs))
	ids := make([]string, 0, len(r.DepartmentIDs))
	for _, id := range r.DepartmentIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	r.DepartmentIDs = ids
}

func (r *SaveMemberRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len([]rune(r.Name)) > 64 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 64 characters",
		})
	}

	if validator.RuneLen(r.LoginID) > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "login_id",
			Message: "login_id must not exceed 50 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
