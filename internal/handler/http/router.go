package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/activity-report/internal/domain/auth"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/pkg/jwt"
	"github.com/cmlabs-hris/activity-report/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the environment-dependent router settings.
type RouterOptions struct {
	Env            string
	Version        string
	LogLevel       slog.Level
	AllowedOrigins []string
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	authHandler AuthHandler,
	dashboardHandler DashboardHandler,
	memberHandler MemberHandler,
	departmentHandler DepartmentHandler,
	reportHandler ReportHandler,
	targetHandler TargetHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "activity-report"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowCredentials: true,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			MaxAge:           300,
		}))
	}

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	// POST-only actions answer other methods with a redirect home
	r.MethodNotAllowed(redirectTo("/"))

	r.Handle("/metrics", metrics.Handler())

	// Every route below may read the session cookie
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwt.TokenFromSessionCookie))

		r.Get("/", authHandler.LoginPage)
		r.Post("/", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/logout", redirectTo("/"))

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireRoles(JWTService, auth.RoleAdmin))

			r.Get("/", dashboardHandler.Page)
			r.Post("/mail/send", dashboardHandler.SendMail)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", memberHandler.List)
				r.Post("/", memberHandler.Save)
				r.Post("/{id}/delete", memberHandler.Delete)
				r.Get("/{id}/delete", redirectTo("/dashboard/members/"))
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", departmentHandler.List)
				r.Post("/", departmentHandler.Post)
				r.Post("/{id}/delete", departmentHandler.Delete)
				r.Get("/{id}/delete", redirectTo("/dashboard/departments/"))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireRoles(JWTService, auth.RoleAdmin, auth.RoleReport))

			r.Get("/", reportHandler.Index)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(JWTService, auth.RoleAdmin))
				r.Get("/history/", reportHandler.History)
				r.Get("/history/export.xlsx", reportHandler.ExportHistory)
			})

			r.Get("/edit/{id}", reportHandler.EditForm)
			r.Post("/edit/{id}", reportHandler.Edit)

			r.Get("/{code}/", reportHandler.Form)
			r.Post("/{code}/", reportHandler.Submit)
			r.Post("/{code}/{id}/delete", reportHandler.Delete)
			r.Get("/{code}/{id}/delete", reportHandler.RedirectToForm)
		})

		r.Route("/targets", func(r chi.Router) {
			r.Use(middleware.RequireRoles(JWTService, auth.RoleAdmin))

			r.Get("/", targetHandler.Overview)
			r.Get("/month/", targetHandler.MonthForm)
			r.Post("/month/", targetHandler.SaveMonth)
			r.Get("/period/", targetHandler.PeriodForm)
			r.Post("/period/", targetHandler.PostPeriod)
			r.Post("/period/{id}/delete", targetHandler.DeletePeriod)
			r.Get("/period/{id}/delete", redirectTo("/targets/period/"))
		})

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/auth/login", authHandler.APILogin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRolesJSON(JWTService, auth.RoleAdmin))

				r.Get("/dashboard", dashboardHandler.GetDashboard)
				r.Get("/dashboard/mail", dashboardHandler.GetMail)
				r.Get("/reports/history", reportHandler.GetHistory)
			})
		})
	})

	return r
}
