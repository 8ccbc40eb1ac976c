package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const (
	actionSavePeriod  = "save_period"
	actionSaveTargets = "save_targets"
)

type TargetHandler interface {
	Overview(w http.ResponseWriter, r *http.Request)
	MonthForm(w http.ResponseWriter, r *http.Request)
	SaveMonth(w http.ResponseWriter, r *http.Request)
	PeriodForm(w http.ResponseWriter, r *http.Request)
	// PostPeriod dispatches on the "action" form field
	PostPeriod(w http.ResponseWriter, r *http.Request)
	DeletePeriod(w http.ResponseWriter, r *http.Request)
}

type targetHandlerImpl struct {
	targetService target.TargetService
	views         *view.Renderer
	now           func() time.Time
}

type targetsPage struct {
	view.Page
	Month   target.MonthTargetsView
	Periods []target.Period
}

type monthTargetsPage struct {
	view.Page
	View   target.MonthTargetsView
	Values map[string]string
}

type periodForm struct {
	Month     string
	Sequence  string
	StartDate string
	EndDate   string
}

type periodTargetsPage struct {
	view.Page
	View       target.PeriodTargetsView
	Values     map[string]string
	PeriodForm periodForm
	Conflicts  []target.Period
}

func NewTargetHandler(targetService target.TargetService, views *view.Renderer, now func() time.Time) TargetHandler {
	if now == nil {
		now = time.Now
	}
	return &targetHandlerImpl{targetService: targetService, views: views, now: now}
}

// storedValues renders the saved target of every field on a settings page.
func storedValues(departments []target.DepartmentTargets) map[string]string {
	values := make(map[string]string)
	for _, d := range departments {
		for _, m := range d.Metrics {
			values[m.FieldName] = strconv.FormatInt(m.Value, 10)
		}
	}
	return values
}

// prefixed collects posted fields starting with prefix, keyed by the rest of the name.
func prefixed(form url.Values, prefix string) map[string]string {
	values := make(map[string]string)
	for key, v := range form {
		if rest, ok := strings.CutPrefix(key, prefix); ok && rest != "" && len(v) > 0 {
			values[rest] = v[0]
		}
	}
	return values
}

func withPrefix(values map[string]string, prefix string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[prefix+k] = v
	}
	return out
}

func (h *targetHandlerImpl) fail(w http.ResponseWriter, r *http.Request, err error) {
	role := middleware.RoleFromContext(r.Context())
	if errors.Is(err, target.ErrPeriodNotFound) || errors.Is(err, target.ErrMetricNotFound) {
		h.views.NotFound(w, role)
		return
	}
	h.views.Error(w, role, err)
}

// Overview handles GET /targets/
func (h *targetHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
	month, err := h.targetService.MonthTargets(r.Context(), kpi.MonthStart(h.now()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	periods, err := h.targetService.ListPeriods(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "targets", targetsPage{
		Page:    view.Page{Title: "目標設定", Role: middleware.RoleFromContext(r.Context())},
		Month:   month,
		Periods: periods,
	})
}

// MonthForm handles GET /targets/month/?month=YYYY-MM
func (h *targetHandlerImpl) MonthForm(w http.ResponseWriter, r *http.Request) {
	month := kpi.MonthStart(h.now())
	if m, ok := validator.IsValidMonth(r.URL.Query().Get("month")); ok {
		month = m
	}

	v, err := h.targetService.MonthTargets(r.Context(), month)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := monthTargetsPage{
		Page:   view.Page{Title: "月間目標", Role: middleware.RoleFromContext(r.Context())},
		View:   v,
		Values: storedValues(v.Departments),
	}
	if r.URL.Query().Get("saved") != "" {
		page.Flash = "月間目標を保存しました"
	}
	h.views.Render(w, http.StatusOK, "month_targets", page)
}

// SaveMonth handles POST /targets/month/
func (h *targetHandlerImpl) SaveMonth(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/targets/month/", http.StatusSeeOther)
		return
	}
	req := target.SaveMonthTargetsRequest{
		Month:  r.PostForm.Get("month"),
		Values: prefixed(r.PostForm, "metric_"),
	}

	err := h.targetService.SaveMonthTargets(r.Context(), req)
	if err == nil {
		http.Redirect(w, r, "/targets/month/?month="+url.QueryEscape(strings.TrimSpace(req.Month))+"&saved=1", http.StatusSeeOther)
		return
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		h.fail(w, r, err)
		return
	}

	month := kpi.MonthStart(h.now())
	if m, ok := validator.IsValidMonth(strings.TrimSpace(req.Month)); ok {
		month = m
	}
	v, err := h.targetService.MonthTargets(r.Context(), month)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	values := storedValues(v.Departments)
	for k, val := range withPrefix(req.Values, "metric_") {
		values[k] = val
	}
	h.views.Render(w, http.StatusOK, "month_targets", monthTargetsPage{
		Page:   view.Page{Title: "月間目標", Role: middleware.RoleFromContext(r.Context()), Errors: validationErrs},
		View:   v,
		Values: values,
	})
}

func (h *targetHandlerImpl) periodPage(r *http.Request, periodID string) (periodTargetsPage, error) {
	v, err := h.targetService.PeriodTargets(r.Context(), periodID)
	if err != nil {
		return periodTargetsPage{}, err
	}
	return periodTargetsPage{
		Page:       view.Page{Title: "路程目標", Role: middleware.RoleFromContext(r.Context())},
		View:       v,
		Values:     storedValues(v.Departments),
		PeriodForm: periodForm{Month: kpi.MonthStart(h.now()).Format("2006-01"), Sequence: "1"},
	}, nil
}

// PeriodForm handles GET /targets/period/?period=<id>
func (h *targetHandlerImpl) PeriodForm(w http.ResponseWriter, r *http.Request) {
	page, err := h.periodPage(r, r.URL.Query().Get("period"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("saved") != "" {
		page.Flash = "保存しました"
	}
	h.views.Render(w, http.StatusOK, "period_targets", page)
}

// PostPeriod handles POST /targets/period/
func (h *targetHandlerImpl) PostPeriod(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/targets/period/", http.StatusSeeOther)
		return
	}

	switch r.PostForm.Get("action") {
	case actionSavePeriod:
		h.savePeriod(w, r)
	case actionSaveTargets:
		h.savePeriodTargets(w, r)
	default:
		http.Redirect(w, r, "/targets/period/", http.StatusSeeOther)
	}
}

func (h *targetHandlerImpl) savePeriod(w http.ResponseWriter, r *http.Request) {
	req := target.SavePeriodRequest{
		Month:            r.PostForm.Get("month"),
		Sequence:         r.PostForm.Get("sequence"),
		StartDate:        r.PostForm.Get("start_date"),
		EndDate:          r.PostForm.Get("end_date"),
		ForceOverwrite:   r.PostForm.Get("force_overwrite") != "",
		ConflictPeriodID: r.PostForm.Get("conflict_period_id"),
	}

	saved, err := h.targetService.SavePeriod(r.Context(), req)
	if err == nil {
		http.Redirect(w, r, "/targets/period/?period="+url.QueryEscape(saved.ID)+"&saved=1", http.StatusSeeOther)
		return
	}

	var (
		errs     validator.ValidationErrors
		overlap  *target.OverlapError
		conflict []target.Period
	)
	switch {
	case errors.As(err, &errs):
	case errors.As(err, &overlap):
		conflict = overlap.Conflicts
		errs = validator.ValidationErrors{{Field: "period", Message: overlap.Error()}}
	case errors.Is(err, target.ErrConflictPeriodRequired):
		errs = validator.ValidationErrors{{Field: "conflict_period_id", Message: err.Error()}}
	case errors.Is(err, target.ErrPeriodNameTaken):
		errs = validator.ValidationErrors{{Field: "period", Message: err.Error()}}
	default:
		h.fail(w, r, err)
		return
	}

	page, err := h.periodPage(r, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page.Errors = errs
	page.Conflicts = conflict
	page.PeriodForm = periodForm{Month: req.Month, Sequence: req.Sequence, StartDate: req.StartDate, EndDate: req.EndDate}
	h.views.Render(w, http.StatusOK, "period_targets", page)
}

func (h *targetHandlerImpl) savePeriodTargets(w http.ResponseWriter, r *http.Request) {
	req := target.SavePeriodTargetsRequest{
		PeriodID: r.PostForm.Get("period_id"),
		Values:   prefixed(r.PostForm, "target_"),
	}

	err := h.targetService.SavePeriodTargets(r.Context(), req)
	if err == nil {
		http.Redirect(w, r, "/targets/period/?period="+url.QueryEscape(req.PeriodID)+"&saved=1", http.StatusSeeOther)
		return
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		h.fail(w, r, err)
		return
	}
	page, err := h.periodPage(r, req.PeriodID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page.Errors = validationErrs
	for k, v := range withPrefix(req.Values, "target_") {
		page.Values[k] = v
	}
	h.views.Render(w, http.StatusOK, "period_targets", page)
}

// DeletePeriod handles POST /targets/period/{id}/delete
func (h *targetHandlerImpl) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.targetService.DeletePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/targets/period/", http.StatusSeeOther)
}
