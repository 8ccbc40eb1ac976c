package http

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/member"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type MemberHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type memberHandlerImpl struct {
	memberService     member.MemberService
	departmentService department.DepartmentService
	views             *view.Renderer
}

type memberForm struct {
	ID            string
	Name          string
	LoginID       string
	DepartmentIDs []string
}

type membersPage struct {
	view.Page
	Members         []member.Member
	Departments     []department.Department
	DepartmentNames map[string]string
	Form            memberForm
}

func NewMemberHandler(memberService member.MemberService, departmentService department.DepartmentService, views *view.Renderer) MemberHandler {
	return &memberHandlerImpl{
		memberService:     memberService,
		departmentService: departmentService,
		views:             views,
	}
}

func (h *memberHandlerImpl) render(w http.ResponseWriter, r *http.Request, status int, form memberForm, errs validator.ValidationErrors) {
	role := middleware.RoleFromContext(r.Context())

	members, err := h.memberService.List(r.Context())
	if err != nil {
		h.views.Error(w, role, err)
		return
	}
	departments, err := h.departmentService.List(r.Context(), false)
	if err != nil {
		h.views.Error(w, role, err)
		return
	}
	names := make(map[string]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}

	h.views.Render(w, status, "members", membersPage{
		Page:            view.Page{Title: "メンバー", Role: role, Errors: errs},
		Members:         members,
		Departments:     departments,
		DepartmentNames: names,
		Form:            form,
	})
}

// List handles GET /dashboard/members/. ?edit=<id> loads a member into the form.
func (h *memberHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleFromContext(r.Context())

	var form memberForm
	if id := r.URL.Query().Get("edit"); id != "" {
		m, err := h.memberService.GetByID(r.Context(), id)
		if errors.Is(err, member.ErrMemberNotFound) {
			h.views.NotFound(w, role)
			return
		}
		if err != nil {
			h.views.Error(w, role, err)
			return
		}
		form = memberForm{ID: m.ID, Name: m.Name, LoginID: m.LoginID, DepartmentIDs: m.DepartmentIDs}
	}
	h.render(w, r, http.StatusOK, form, nil)
}

// Save handles POST /dashboard/members/
func (h *memberHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, memberForm{}, validator.ValidationErrors{{Field: "__all__", Message: "invalid form"}})
		return
	}

	req := member.SaveMemberRequest{
		ID:            r.PostForm.Get("id"),
		Name:          r.PostForm.Get("name"),
		LoginID:       r.PostForm.Get("login_id"),
		DepartmentIDs: r.PostForm["department_ids"],
	}
	form := memberForm{ID: req.ID, Name: req.Name, LoginID: req.LoginID, DepartmentIDs: req.DepartmentIDs}

	_, err := h.memberService.Save(r.Context(), req)
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/members/", http.StatusSeeOther)
	case errors.As(err, &validationErrs):
		h.render(w, r, http.StatusOK, form, validationErrs)
	case errors.Is(err, member.ErrMemberNotFound):
		h.views.NotFound(w, middleware.RoleFromContext(r.Context()))
	default:
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}

// Delete handles POST /dashboard/members/{id}/delete
func (h *memberHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.memberService.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/members/", http.StatusSeeOther)
	case errors.Is(err, member.ErrMemberNotFound):
		h.views.NotFound(w, middleware.RoleFromContext(r.Context()))
	default:
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}
