package target

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

// SaveMetricRequest creates a metric when ID is empty and updates it otherwise.
type SaveMetricRequest struct {
	ID           string
	DepartmentID string
	Code         string
	Label        string
	Unit         string
	DisplayOrder string
	IsActive     bool
}

func (r *SaveMetricRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.DepartmentID = strings.TrimSpace(r.DepartmentID)
	r.Code = strings.ToLower(strings.TrimSpace(r.Code))
	r.Label = strings.TrimSpace(r.Label)
	r.Unit = strings.TrimSpace(r.Unit)
}

// Validate returns the parsed display order.
func (r *SaveMetricRequest) Validate() (int, error) {
	var errs validator.ValidationErrors

	if r.DepartmentID == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "select a department",
		})
	}
	if validator.IsEmpty(r.Label) {
		errs = append(errs, validator.ValidationError{
			Field:   "label",
			Message: "label is required",
		})
	} else if validator.RuneLen(r.Label) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "label",
			Message: "label must not exceed 100 characters",
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
	if validator.RuneLen(r.Unit) > 20 {
		errs = append(errs, validator.ValidationError{
			Field:   "unit",
			Message: "unit must not exceed 20 characters",
		})
	}

	order := 1
	if !validator.IsEmpty(r.DisplayOrder) {
		n, ok := validator.ParseInt(r.DisplayOrder)
		if !ok || n < 1 {
			errs = append(errs, validator.ValidationError{
				Field:   "display_order",
				Message: "display_order must be 1 or greater",
			})
		} else if n > validator.MaxStoredInt {
			errs = append(errs, validator.ValidationError{
				Field:   "display_order",
				Message: fmt.Sprintf("display_order must not exceed %d", validator.MaxStoredInt),
			})
		}
		order = n
	}

	if len(errs) > 0 {
		return 0, errs
	}
	return order, nil
}

// SaveMonthTargetsRequest holds raw values keyed by metric id.
type SaveMonthTargetsRequest struct {
	Month  string
	Values map[string]string
}

// Validate returns the month start and parsed values.
func (r *SaveMonthTargetsRequest) Validate() (time.Time, map[string]int64, error) {
	var errs validator.ValidationErrors

	month, ok := validator.IsValidMonth(strings.TrimSpace(r.Month))
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}
	values, valueErrs := parseValues(r.Values, "metric_")
	errs = append(errs, valueErrs...)

	if len(errs) > 0 {
		return time.Time{}, nil, errs
	}
	return month, values, nil
}

func parseValues(raw map[string]string, fieldPrefix string) (map[string]int64, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	values := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, ok, tooLarge := validator.ParseStoredInt(v)
		if tooLarge {
			errs = append(errs, validator.ValidationError{
				Field:   fieldPrefix + id,
				Message: fmt.Sprintf("value must not exceed %d", validator.MaxStoredInt),
			})
			continue
		}
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   fieldPrefix + id,
				Message: "value must be an integer of 0 or greater",
			})
			continue
		}
		values[id] = int64(n)
	}
	return values, errs
}

// SavePeriodRequest saves the period named by (Month, Sequence).
// When ForceOverwrite is set, ConflictPeriodID must name one of the
// overlapping periods and that period is overwritten in place.
type SavePeriodRequest struct {
	Month            string
	Sequence         string
	StartDate        string
	EndDate          string
	ForceOverwrite   bool
	ConflictPeriodID string
}

type PeriodInput struct {
	Month     time.Time
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

func (r *SavePeriodRequest) Validate() (PeriodInput, error) {
	var (
		errs validator.ValidationErrors
		in   PeriodInput
	)

	month, ok := validator.IsValidMonth(strings.TrimSpace(r.Month))
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}
	seq, err := strconv.Atoi(strings.TrimSpace(r.Sequence))
	if err != nil || seq < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "sequence",
			Message: "sequence must be 1 or greater",
		})
	}
	start, startOK := validator.IsValidDate(strings.TrimSpace(r.StartDate))
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(strings.TrimSpace(r.EndDate))
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && start.After(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be on or after start_date",
		})
	}
	if r.ForceOverwrite && validator.IsEmpty(r.ConflictPeriodID) {
		errs = append(errs, validator.ValidationError{
			Field:   "conflict_period_id",
			Message: "select the period to overwrite",
		})
	}

	if len(errs) > 0 {
		return in, errs
	}

	in = PeriodInput{
		Month:     month,
		Name:      kpi.PeriodName(month.Year(), int(month.Month()), seq),
		StartDate: start,
		EndDate:   end,
	}
	return in, nil
}

// SavePeriodTargetsRequest holds raw values keyed by "<department id>:<metric id>".
type SavePeriodTargetsRequest struct {
	PeriodID string
	Values   map[string]string
}

type PeriodValueKey struct {
	DepartmentID string
	MetricID     string
}

func (k PeriodValueKey) String() string {
	return k.DepartmentID + ":" + k.MetricID
}

func (r *SavePeriodTargetsRequest) Validate() (map[PeriodValueKey]int64, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{
			Field:   "period_id",
			Message: "select a period",
		})
	}
	raw, valueErrs := parseValues(r.Values, "target_")
	errs = append(errs, valueErrs...)

	values := make(map[PeriodValueKey]int64, len(raw))
	for key, v := range raw {
		dept, metric, ok := strings.Cut(key, ":")
		if !ok || dept == "" || metric == "" {
			errs = append(errs, validator.ValidationError{
				Field:   "target_" + key,
				Message: "malformed target key",
			})
			continue
		}
		values[PeriodValueKey{DepartmentID: dept, MetricID: metric}] = v
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

type MetricResponse struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	Code         string `json:"code"`
	Label        string `json:"label"`
	Unit         string `json:"unit"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

type PeriodResponse struct {
	ID        string     `json:"id"`
	Month     string     `json:"month"`
	Name      string     `json:"name"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Status    kpi.Status `json:"status"`
}

func ToPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:        p.ID,
		Month:     p.Month.Format("2006-01"),
		Name:      p.Name,
		StartDate: p.StartDate.Format("2006-01-02"),
		EndDate:   p.EndDate.Format("2006-01-02"),
		Status:    p.Status,
	}
}

// DepartmentTargets is one department's row on a target settings page.
type DepartmentTargets struct {
	DepartmentID   string
	DepartmentCode string
	DepartmentName string
	Metrics        []MetricTarget
}

type MetricTarget struct {
	Metric Metric
	Value  int64
	// FieldName is the form field carrying this value.
	FieldName string
}

// MonthTargetsView backs the month settings page.
type MonthTargetsView struct {
	Month       time.Time
	Status      kpi.Status
	Departments []DepartmentTargets
}

// PeriodTargetsView backs the period settings page.
type PeriodTargetsView struct {
	Periods     []Period
	Selected    *Period
	Departments []DepartmentTargets
}
