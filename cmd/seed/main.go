package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/activity-report/internal/config"
	"github.com/cmlabs-hris/activity-report/internal/fixtures"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"github.com/cmlabs-hris/activity-report/internal/repository/postgresql"
)

func main() {
	force := flag.Bool("force", false, "seed even when departments or metrics already exist")
	file := flag.String("file", "", "YAML defaults file (built-in defaults when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	defaults, err := fixtures.LoadDefaults(*file)
	if err != nil {
		slog.Error("Failed to load defaults", "error", err)
		os.Exit(1)
	}

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

	seeder := fixtures.NewSeeder(
		postgresql.NewTransactor(db),
		postgresql.NewDepartmentRepository(db),
		postgresql.NewMetricRepository(db),
	)
	result, err := seeder.Seed(context.Background(), defaults, *force)
	if err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
	if result.Skipped {
		fmt.Println("Departments or metrics already exist; run with -force to seed anyway")
		return
	}
	fmt.Printf("Seeded %d departments and %d metrics\n", result.CreatedDepartments, result.CreatedMetrics)
}
