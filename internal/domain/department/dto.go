package department

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

type DepartmentResponse struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	IsActive          bool      `json:"is_active"`
	DefaultReporterID *string   `json:"default_reporter_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func ToResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:                d.ID,
		Code:              d.Code,
		Name:              d.Name,
		IsActive:          d.IsActive,
		DefaultReporterID: d.DefaultReporterID,
		CreatedAt:         d.CreatedAt,
	}
}

// SaveDepartmentRequest creates a department when ID is empty and updates it otherwise.
type SaveDepartmentRequest struct {
	ID                string
	Code              string
	Name              string
	DefaultReporterID string
}

// Normalize trims input and upper-cases the code.
func (r *SaveDepartmentRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Name = strings.TrimSpace(r.Name)
	r.DefaultReporterID = strings.TrimSpace(r.DefaultReporterID)
}

func (r *SaveDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if validator.RuneLen(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	} else if !validator.IsValidCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code may only contain letters, digits, '_' and '-'",
		})
	}

	if r.DefaultReporterID != "" && r.ID == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "default_reporter",
			Message: "default reporter can be set after members are linked",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
