package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/activity-report/internal/domain/auth"
	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var overlap *target.OverlapError
	if errors.As(err, &overlap) {
		details := make(map[string]string, len(overlap.Conflicts))
		for _, p := range overlap.Conflicts {
			details[p.ID] = p.Name
		}
		Conflict(w, overlap.Error(), details)
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnknownRole):
		Unauthorized(w, auth.ErrInvalidCredentials.Error())

	// Not found
	case errors.Is(err, department.ErrDepartmentNotFound),
		errors.Is(err, report.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, member.ErrMemberNotFound):
		NotFound(w, "Member not found")
	case errors.Is(err, report.ErrReportNotFound):
		NotFound(w, "Report not found")
	case errors.Is(err, target.ErrMetricNotFound):
		NotFound(w, "Target metric not found")
	case errors.Is(err, target.ErrPeriodNotFound):
		NotFound(w, "Period not found")

	// Conflicts
	case errors.Is(err, department.ErrDepartmentCodeExists),
		errors.Is(err, member.ErrLoginIDExists),
		errors.Is(err, report.ErrReportDateTaken),
		errors.Is(err, target.ErrMetricCodeExists),
		errors.Is(err, target.ErrPeriodNameTaken):
		Conflict(w, err.Error(), nil)

	// Bad input that passed field validation
	case errors.Is(err, department.ErrReporterNotInDepartment),
		errors.Is(err, member.ErrDepartmentNotActive),
		errors.Is(err, report.ErrReporterNotLinked),
		errors.Is(err, target.ErrConflictPeriodRequired):
		BadRequest(w, err.Error(), nil)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
