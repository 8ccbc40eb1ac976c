package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/response"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// minFormRows is how many member rows the submission form offers at least.
const minFormRows = 5

type ReportHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Form(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	EditForm(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	// RedirectToForm answers non-POST requests on action URLs
	RedirectToForm(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ExportHistory(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService    report.ReportService
	dashboardService dashboard.DashboardService
	views            *view.Renderer
	now              func() time.Time
}

type reportIndexPage struct {
	view.Page
	Index *dashboard.ReportIndexResponse
}

type reportFormPage struct {
	view.Page
	Form       report.FormContext
	Action     string
	EditID     string
	Mode       string
	ReportDate string
	ReporterID string
	Memo       string
	Rows       []report.RowInput
}

type historyPage struct {
	view.Page
	Reports []report.Report
}

func NewReportHandler(
	reportService report.ReportService,
	dashboardService dashboard.DashboardService,
	views *view.Renderer,
	now func() time.Time,
) ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &reportHandlerImpl{
		reportService:    reportService,
		dashboardService: dashboardService,
		views:            views,
		now:              now,
	}
}

func padRows(rows []report.RowInput) []report.RowInput {
	for len(rows) < minFormRows {
		rows = append(rows, report.EmptyRow())
	}
	return rows
}

func formPath(code string, day time.Time, mode string) string {
	q := url.Values{}
	q.Set("date", day.Format("2006-01-02"))
	if mode == report.ModePrev {
		q.Set("mode", mode)
	}
	return "/reports/" + url.PathEscape(code) + "/?" + q.Encode()
}

// selectedDay resolves the form's day: an explicit date wins, then
// mode=prev for yesterday, then today.
func (h *reportHandlerImpl) selectedDay(q url.Values) (time.Time, string) {
	mode := report.ModeToday
	if q.Get("mode") == report.ModePrev {
		mode = report.ModePrev
	}
	if d, ok := validator.IsValidDate(strings.TrimSpace(q.Get("date"))); ok {
		return d, mode
	}
	today := kpi.DateOf(h.now())
	if mode == report.ModePrev {
		return today.AddDate(0, 0, -1), mode
	}
	return today, mode
}

func submitRequestFromForm(r *http.Request, code string) report.SubmitReportRequest {
	return report.SubmitReportRequest{
		DepartmentCode: code,
		ReportDate:     r.PostForm.Get("report_date"),
		ReporterID:     r.PostForm.Get("reporter_id"),
		Memo:           r.PostForm.Get("memo"),
		MemberIDs:      r.PostForm["member_id"],
		Amounts:        r.PostForm["amount"],
		Counts:         r.PostForm["count"],
		CSCounts:       r.PostForm["cs_count"],
		RefugeeCounts:  r.PostForm["refugee_count"],
		Locations:      r.PostForm["location"],
	}
}

func (h *reportHandlerImpl) notFoundOrError(w http.ResponseWriter, r *http.Request, err error) {
	role := middleware.RoleFromContext(r.Context())
	if errors.Is(err, report.ErrDepartmentNotFound) || errors.Is(err, report.ErrReportNotFound) {
		h.views.NotFound(w, role)
		return
	}
	h.views.Error(w, role, err)
}

// Index handles GET /reports/
func (h *reportHandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleFromContext(r.Context())

	index, err := h.dashboardService.GetReportIndex(r.Context())
	if err != nil {
		h.views.Error(w, role, err)
		return
	}

	h.views.Render(w, http.StatusOK, "report_index", reportIndexPage{
		Page:  view.Page{Title: "活動報告", Role: role},
		Index: index,
	})
}

// Form handles GET /reports/{code}/
func (h *reportHandlerImpl) Form(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	day, mode := h.selectedDay(r.URL.Query())

	fc, err := h.reportService.FormContext(r.Context(), code, day)
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}

	page := reportFormPage{
		Page:       view.Page{Title: fc.DepartmentName, Role: middleware.RoleFromContext(r.Context())},
		Form:       fc,
		Action:     "/reports/" + url.PathEscape(fc.DepartmentCode) + "/",
		Mode:       mode,
		ReportDate: day.Format("2006-01-02"),
		ReporterID: fc.DefaultReporterID,
		Rows:       padRows(nil),
	}
	if r.URL.Query().Get("saved") != "" {
		page.Flash = "報告を保存しました"
	}
	h.views.Render(w, http.StatusOK, "report_form", page)
}

// Submit handles POST /reports/{code}/
func (h *reportHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/reports/"+url.PathEscape(code)+"/", http.StatusSeeOther)
		return
	}
	req := submitRequestFromForm(r, code)
	mode := r.PostForm.Get("mode")

	saved, err := h.reportService.Submit(r.Context(), req)
	if err == nil {
		http.Redirect(w, r, formPath(saved.DepartmentCode, saved.ReportDate, mode)+"&saved=1", http.StatusSeeOther)
		return
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		h.notFoundOrError(w, r, err)
		return
	}

	day, mode := h.selectedDay(url.Values{"date": {req.ReportDate}, "mode": {mode}})
	fc, err := h.reportService.FormContext(r.Context(), code, day)
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}
	h.views.Render(w, http.StatusOK, "report_form", reportFormPage{
		Page:       view.Page{Title: fc.DepartmentName, Role: middleware.RoleFromContext(r.Context()), Errors: validationErrs},
		Form:       fc,
		Action:     "/reports/" + url.PathEscape(fc.DepartmentCode) + "/",
		Mode:       mode,
		ReportDate: req.ReportDate,
		ReporterID: req.ReporterID,
		Memo:       req.Memo,
		Rows:       padRows(req.Rows()),
	})
}

func (h *reportHandlerImpl) editPage(r *http.Request, rep report.Report) (reportFormPage, error) {
	fc, err := h.reportService.FormContext(r.Context(), rep.DepartmentCode, rep.ReportDate)
	if err != nil {
		return reportFormPage{}, err
	}
	page := reportFormPage{
		Page:       view.Page{Title: fc.DepartmentName, Role: middleware.RoleFromContext(r.Context())},
		Form:       fc,
		Action:     "/reports/edit/" + rep.ID,
		EditID:     rep.ID,
		ReportDate: rep.ReportDate.Format("2006-01-02"),
		Memo:       rep.Memo,
		Rows:       padRows(report.RowsFromLines(rep.Lines, fc.Rules)),
	}
	if rep.ReporterID != nil {
		page.ReporterID = *rep.ReporterID
	}
	return page, nil
}

// EditForm handles GET /reports/edit/{id}
func (h *reportHandlerImpl) EditForm(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reportService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}
	page, err := h.editPage(r, rep)
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}
	h.views.Render(w, http.StatusOK, "report_form", page)
}

// Edit handles POST /reports/edit/{id}
func (h *reportHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := h.reportService.GetByID(r.Context(), id)
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/reports/edit/"+rep.ID, http.StatusSeeOther)
		return
	}
	req := submitRequestFromForm(r, rep.DepartmentCode)

	saved, err := h.reportService.Edit(r.Context(), id, req)
	if err == nil {
		http.Redirect(w, r, formPath(saved.DepartmentCode, saved.ReportDate, "")+"&saved=1", http.StatusSeeOther)
		return
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		h.notFoundOrError(w, r, err)
		return
	}
	page, err := h.editPage(r, rep)
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}
	page.Errors = validationErrs
	page.ReportDate = req.ReportDate
	page.ReporterID = req.ReporterID
	page.Memo = req.Memo
	page.Rows = padRows(req.Rows())
	h.views.Render(w, http.StatusOK, "report_form", page)
}

// Delete handles POST /reports/{code}/{id}/delete
func (h *reportHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if err := h.reportService.Delete(r.Context(), code, chi.URLParam(r, "id")); err != nil {
		h.notFoundOrError(w, r, err)
		return
	}
	http.Redirect(w, r, "/reports/"+url.PathEscape(code)+"/", http.StatusSeeOther)
}

// RedirectToForm handles GET /reports/{code}/{id}/delete
func (h *reportHandlerImpl) RedirectToForm(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	http.Redirect(w, r, "/reports/"+url.PathEscape(code)+"/", http.StatusSeeOther)
}

// History handles GET /reports/history/
func (h *reportHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleFromContext(r.Context())

	reports, err := h.reportService.History(r.Context())
	if err != nil {
		h.views.Error(w, role, err)
		return
	}
	h.views.Render(w, http.StatusOK, "history", historyPage{
		Page:    view.Page{Title: "報告履歴", Role: role},
		Reports: reports,
	})
}

// GetHistory handles GET /api/v1/reports/history
func (h *reportHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.History(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]report.ReportResponse, 0, len(reports))
	for _, rep := range reports {
		items = append(items, report.ToResponse(rep))
	}
	response.List(w, items, report.HistoryLimit)
}

// ExportHistory handles GET /reports/history/export.xlsx
func (h *reportHandlerImpl) ExportHistory(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("report-history-%s.xlsx", h.now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.reportService.ExportHistory(r.Context(), w); err != nil {
		h.views.Error(w, middleware.RoleFromContext(r.Context()), err)
	}
}
