package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/config"
	appHTTP "github.com/cmlabs-hris/activity-report/internal/handler/http"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/cmlabs-hris/activity-report/internal/pkg/email"
	"github.com/cmlabs-hris/activity-report/internal/pkg/jwt"
	"github.com/cmlabs-hris/activity-report/internal/pkg/metrics"
	"github.com/cmlabs-hris/activity-report/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/activity-report/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/activity-report/internal/service/dashboard"
	departmentService "github.com/cmlabs-hris/activity-report/internal/service/department"
	memberService "github.com/cmlabs-hris/activity-report/internal/service/member"
	reportService "github.com/cmlabs-hris/activity-report/internal/service/report"
	targetService "github.com/cmlabs-hris/activity-report/internal/service/target"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	dsn := cfg.DatabaseURL()
	if err := database.Migrate(dsn); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	transactor := postgresql.NewTransactor(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	memberRepo := postgresql.NewMemberRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	metricRepo := postgresql.NewMetricRepository(db)
	monthRepo := postgresql.NewMonthTargetRepository(db)
	periodRepo := postgresql.NewPeriodRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	metrics.MustRegister()

	JWTService := jwt.NewJWTService(cfg.Session.Secret, cfg.Session.Expiration, cfg.App.Env == "production")
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		slog.Error("Failed to initialize email service", "error", err)
		os.Exit(1)
	}
	authService, err := serviceAuth.NewAuthService(JWTService, serviceAuth.Credentials{
		AdminPassword:  cfg.Roles.AdminPassword,
		ReportPassword: cfg.Roles.ReportPassword,
	})
	if err != nil {
		slog.Error("Failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	departmentSvc := departmentService.NewDepartmentService(transactor, departmentRepo, memberRepo)
	memberSvc := memberService.NewMemberService(transactor, memberRepo, departmentRepo)
	reportSvc := reportService.NewReportService(transactor, reportRepo, departmentRepo, memberRepo, reportService.FormRules{
		SplitCountCodes: cfg.Report.SplitCountCodes,
		NoLocationCodes: cfg.Report.NoLocationCodes,
	})
	targetSvc := targetService.NewTargetService(transactor, metricRepo, monthRepo, periodRepo, departmentRepo, now)
	dashboardSvc := dashboardService.NewDashboardService(
		dashboardRepo,
		departmentRepo,
		metricRepo,
		monthRepo,
		periodRepo,
		emailService,
		dashboardService.Options{
			SplitCountCodes: cfg.Report.SplitCountCodes,
			SummaryTo:       cfg.SMTP.SummaryTo,
			Now:             now,
		},
	)

	views, err := view.New()
	if err != nil {
		slog.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}

	authHandler := appHTTP.NewAuthHandler(JWTService, authService, views)
	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc, views)
	memberHandler := appHTTP.NewMemberHandler(memberSvc, departmentSvc, views)
	departmentHandler := appHTTP.NewDepartmentHandler(departmentSvc, memberSvc, targetSvc, views)
	reportHandler := appHTTP.NewReportHandler(reportSvc, dashboardSvc, views, now)
	targetHandler := appHTTP.NewTargetHandler(targetSvc, views, now)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		JWTService,
		authHandler,
		dashboardHandler,
		memberHandler,
		departmentHandler,
		reportHandler,
		targetHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
