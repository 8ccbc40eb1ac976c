package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/report"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/response"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
)

type DashboardHandler interface {
	// Page renders the admin dashboard for ?mode=today|prev
	Page(w http.ResponseWriter, r *http.Request)
	// SendMail mails the summary of the posted mode
	SendMail(w http.ResponseWriter, r *http.Request)
	// GetDashboard returns the dashboard as JSON
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetMail returns the mail summary of one mode as JSON
	GetMail(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
	views            *view.Renderer
}

type dashboardPage struct {
	view.Page
	Mode      string
	Dashboard *dashboard.DashboardResponse
	Mail      *dashboard.MailPayload
}

func NewDashboardHandler(dashboardService dashboard.DashboardService, views *view.Renderer) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService, views: views}
}

func modeParam(v string) string {
	if v == report.ModePrev {
		return report.ModePrev
	}
	return report.ModeToday
}

func pickMail(payloads *dashboard.MailPayloads, mode string) *dashboard.MailPayload {
	if mode == report.ModePrev {
		return &payloads.Prev
	}
	return &payloads.Today
}

// Page handles GET /dashboard/
func (h *dashboardHandlerImpl) Page(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleFromContext(r.Context())
	mode := modeParam(r.URL.Query().Get("mode"))

	result, err := h.dashboardService.GetDashboard(r.Context(), mode)
	if err != nil {
		h.views.Error(w, role, err)
		return
	}
	payloads, err := h.dashboardService.GetMailPayloads(r.Context())
	if err != nil {
		h.views.Error(w, role, err)
		return
	}

	page := dashboardPage{
		Page:      view.Page{Title: "ダッシュボード", Role: role},
		Mode:      mode,
		Dashboard: result,
		Mail:      pickMail(payloads, mode),
	}
	switch r.URL.Query().Get("mail") {
	case "sent":
		page.Flash = "サマリーを送信しました"
	case "failed":
		page.Flash = "サマリーの送信に失敗しました"
	}
	h.views.Render(w, http.StatusOK, "dashboard", page)
}

// SendMail handles POST /dashboard/mail/send
func (h *dashboardHandlerImpl) SendMail(w http.ResponseWriter, r *http.Request) {
	mode := modeParam(r.FormValue("mode"))

	q := url.Values{}
	if mode == report.ModePrev {
		q.Set("mode", mode)
	}
	q.Set("mail", "sent")
	if err := h.dashboardService.SendDailySummary(r.Context(), mode); err != nil {
		slog.Error("SendDailySummary error", "mode", mode, "error", err)
		q.Set("mail", "failed")
	}
	http.Redirect(w, r, "/dashboard/?"+q.Encode(), http.StatusSeeOther)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context(), modeParam(r.URL.Query().Get("mode")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMail handles GET /api/v1/dashboard/mail
func (h *dashboardHandlerImpl) GetMail(w http.ResponseWriter, r *http.Request) {
	payloads, err := h.dashboardService.GetMailPayloads(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, pickMail(payloads, modeParam(r.URL.Query().Get("mode"))))
}
