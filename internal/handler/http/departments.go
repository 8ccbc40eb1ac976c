package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const (
	actionSaveDepartment = "save_department"
	actionSaveMetric     = "save_metric"
	actionToggleMetric   = "toggle_metric"
)

type DepartmentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	// Post dispatches on the "action" form field
	Post(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type departmentHandlerImpl struct {
	departmentService department.DepartmentService
	memberService     member.MemberService
	targetService     target.TargetService
	views             *view.Renderer
}

type departmentForm struct {
	ID                string
	Code              string
	Name              string
	DefaultReporterID string
}

type metricForm struct {
	ID           string
	DepartmentID string
	Code         string
	Label        string
	Unit         string
	DisplayOrder string
	IsActive     bool
}

type departmentsPage struct {
	view.Page
	Departments       []department.Department
	Metrics           []target.Metric
	ReporterNames     map[string]string
	DepartmentMembers []member.Member
	DepartmentForm    departmentForm
	MetricForm        metricForm
}

func NewDepartmentHandler(
	departmentService department.DepartmentService,
	memberService member.MemberService,
	targetService target.TargetService,
	views *view.Renderer,
) DepartmentHandler {
	return &departmentHandlerImpl{
		departmentService: departmentService,
		memberService:     memberService,
		targetService:     targetService,
		views:             views,
	}
}

func (h *departmentHandlerImpl) render(w http.ResponseWriter, r *http.Request, status int, page departmentsPage) {
	ctx := r.Context()
	role := middleware.RoleFromContext(ctx)

	departments, err := h.departmentService.List(ctx, false)
	if err != nil {
		h.views.Error(w, role, err)
		return
	}
	metrics, err := h.targetService.ListMetrics(ctx, "")
	if err != nil {
		h.views.Error(w, role, err)
		return
	}
	members, err := h.memberService.List(ctx)
	if err != nil {
		h.views.Error(w, role, err)
		return
	}

	page.ReporterNames = make(map[string]string, len(members))
	for _, m := range members {
		page.ReporterNames[m.ID] = m.Name
	}
	if id := page.DepartmentForm.ID; id != "" {
		page.DepartmentMembers, err = h.memberService.ListByDepartment(ctx, id)
		if err != nil {
			h.views.Error(w, role, err)
			return
		}
	}

	page.Page.Title = "部署"
	page.Page.Role = role
	page.Departments = departments
	page.Metrics = metrics
	h.views.Render(w, status, "departments", page)
}

// List handles GET /dashboard/departments/. ?edit=<id> and ?metric=<id> prefill the forms.
func (h *departmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := middleware.RoleFromContext(ctx)
	page := departmentsPage{MetricForm: metricForm{DisplayOrder: "1", IsActive: true}}

	if id := r.URL.Query().Get("edit"); id != "" {
		d, err := h.departmentService.GetByID(ctx, id)
		if errors.Is(err, department.ErrDepartmentNotFound) {
			h.views.NotFound(w, role)
			return
		}
		if err != nil {
			h.views.Error(w, role, err)
			return
		}
		page.DepartmentForm = departmentForm{ID: d.ID, Code: d.Code, Name: d.Name}
		if d.DefaultReporterID != nil {
			page.DepartmentForm.DefaultReporterID = *d.DefaultReporterID
		}
	}

	if id := r.URL.Query().Get("metric"); id != "" {
		m, err := h.targetService.GetMetric(ctx, id)
		if errors.Is(err, target.ErrMetricNotFound) {
			h.views.NotFound(w, role)
			return
		}
		if err != nil {
			h.views.Error(w, role, err)
			return
		}
		page.MetricForm = metricForm{
			ID:           m.ID,
			DepartmentID: m.DepartmentID,
			Code:         m.Code,
			Label:        m.Label,
			Unit:         m.Unit,
			DisplayOrder: strconv.Itoa(m.DisplayOrder),
			IsActive:     m.IsActive,
		}
	}

	h.render(w, r, http.StatusOK, page)
}

// Post handles POST /dashboard/departments/
func (h *departmentHandlerImpl) Post(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, departmentsPage{Page: view.Page{Errors: validator.ValidationErrors{{Field: "__all__", Message: "invalid form"}}}})
		return
	}

	switch r.PostForm.Get("action") {
	case actionSaveDepartment:
		h.saveDepartment(w, r)
	case actionSaveMetric:
		h.saveMetric(w, r)
	case actionToggleMetric:
		h.toggleMetric(w, r)
	default:
		h.render(w, r, http.StatusBadRequest, departmentsPage{Page: view.Page{Errors: validator.ValidationErrors{{Field: "__all__", Message: "unknown action"}}}})
	}
}

func (h *departmentHandlerImpl) saveDepartment(w http.ResponseWriter, r *http.Request) {
	req := department.SaveDepartmentRequest{
		ID:                r.PostForm.Get("id"),
		Code:              r.PostForm.Get("code"),
		Name:              r.PostForm.Get("name"),
		DefaultReporterID: r.PostForm.Get("default_reporter_id"),
	}

	_, err := h.departmentService.Save(r.Context(), req)
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/departments/", http.StatusSeeOther)
	case errors.As(err, &validationErrs):
		h.render(w, r, http.StatusOK, departmentsPage{
			Page:           view.Page{Errors: validationErrs},
			DepartmentForm: departmentForm{ID: req.ID, Code: req.Code, Name: req.Name, DefaultReporterID: req.DefaultReporterID},
			MetricForm:     metricForm{DisplayOrder: "1", IsActive: true},
		})
	case errors.Is(err, department.ErrDepartmentNotFound):
		h.views.NotFound(w, middleware.RoleFromContext(r.Context()))
	default:
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}

func (h *departmentHandlerImpl) saveMetric(w http.ResponseWriter, r *http.Request) {
	req := target.SaveMetricRequest{
		ID:           r.PostForm.Get("metric_id"),
		DepartmentID: r.PostForm.Get("department_id"),
		Code:         r.PostForm.Get("metric_code"),
		Label:        r.PostForm.Get("label"),
		Unit:         r.PostForm.Get("unit"),
		DisplayOrder: r.PostForm.Get("display_order"),
		IsActive:     r.PostForm.Get("is_active") != "",
	}

	_, err := h.targetService.SaveMetric(r.Context(), req)
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/departments/", http.StatusSeeOther)
	case errors.As(err, &validationErrs):
		// the metric form shares the page with the department form
		for i := range validationErrs {
			if validationErrs[i].Field == "code" {
				validationErrs[i].Field = "metric_code"
			}
		}
		h.render(w, r, http.StatusOK, departmentsPage{
			Page: view.Page{Errors: validationErrs},
			MetricForm: metricForm{
				ID:           req.ID,
				DepartmentID: req.DepartmentID,
				Code:         req.Code,
				Label:        req.Label,
				Unit:         req.Unit,
				DisplayOrder: req.DisplayOrder,
				IsActive:     req.IsActive,
			},
		})
	case errors.Is(err, target.ErrMetricNotFound):
		h.views.NotFound(w, middleware.RoleFromContext(r.Context()))
	default:
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}

func (h *departmentHandlerImpl) toggleMetric(w http.ResponseWriter, r *http.Request) {
	_, err := h.targetService.ToggleMetric(r.Context(), r.PostForm.Get("metric_id"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/departments/", http.StatusSeeOther)
	case errors.Is(err, target.ErrMetricNotFound):
		h.views.NotFound(w, middleware.RoleFromContext(r.Context()))
	default:
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}

// Delete handles POST /dashboard/departments/{id}/delete
func (h *departmentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.departmentService.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/departments/", http.StatusSeeOther)
	case errors.Is(err, department.ErrDepartmentNotFound):
		h.views.NotFound(w, middleware.RoleFromContext(r.Context()))
	default:
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}
