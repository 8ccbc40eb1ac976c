package fixtures

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/activity-report/internal/domain/department"
	"github.com/cmlabs-hris/activity-report/internal/domain/target"
	"github.com/cmlabs-hris/activity-report/internal/pkg/database"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

type Defaults struct {
	Departments []DepartmentDefault `yaml:"departments"`
}

type DepartmentDefault struct {
	Code    string          `yaml:"code"`
	Name    string          `yaml:"name"`
	Metrics []MetricDefault `yaml:"metrics"`
}

type MetricDefault struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`
}

// LoadDefaults parses the file at path, or the built-in defaults when path is empty.
func LoadDefaults(path string) (Defaults, error) {
	data := embeddedDefaults
	if path != "" {
		raw, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Defaults{}, fmt.Errorf("failed to read defaults file: %w", err)
		}
		data = raw
	}
	return ParseDefaults(data)
}

func ParseDefaults(data []byte) (Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("failed to parse defaults: %w", err)
	}
	for i := range d.Departments {
		dep := &d.Departments[i]
		dep.Code = strings.ToUpper(strings.TrimSpace(dep.Code))
		if dep.Code == "" || strings.TrimSpace(dep.Name) == "" {
			return Defaults{}, fmt.Errorf("department %d: code and name are required", i+1)
		}
		for j := range dep.Metrics {
			dep.Metrics[j].Code = strings.ToLower(strings.TrimSpace(dep.Metrics[j].Code))
			if dep.Metrics[j].Code == "" {
				return Defaults{}, fmt.Errorf("department %s metric %d: code is required", dep.Code, j+1)
			}
		}
	}
	return d, nil
}

type SeedResult struct {
	Skipped            bool
	CreatedDepartments int
	CreatedMetrics     int
}

// Seeder applies Defaults to the database.
type Seeder struct {
	tx          database.Transactor
	departments department.DepartmentRepository
	metrics     target.MetricRepository
}

func NewSeeder(tx database.Transactor, departments department.DepartmentRepository, metrics target.MetricRepository) *Seeder {
	return &Seeder{tx: tx, departments: departments, metrics: metrics}
}

// Seed runs only when both departments and metrics are empty, unless force
// is set. Existing departments (by code) and metrics (by department and
// code) are updated in place and reactivated.
func (s *Seeder) Seed(ctx context.Context, d Defaults, force bool) (SeedResult, error) {
	var result SeedResult

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		deptCount, err := s.departments.Count(ctx)
		if err != nil {
			return err
		}
		metricCount, err := s.metrics.Count(ctx)
		if err != nil {
			return err
		}
		if !force && (deptCount > 0 || metricCount > 0) {
			result.Skipped = true
			return nil
		}

		for _, def := range d.Departments {
			dept, created, err := s.upsertDepartment(ctx, def)
			if err != nil {
				return err
			}
			if created {
				result.CreatedDepartments++
			}

			existing, err := s.metrics.ListByDepartment(ctx, dept.ID, false)
			if err != nil {
				return err
			}
			byCode := make(map[string]target.Metric, len(existing))
			for _, m := range existing {
				byCode[m.Code] = m
			}

			for order, md := range def.Metrics {
				metric := target.Metric{
					DepartmentID: dept.ID,
					Code:         md.Code,
					Label:        md.Label,
					Unit:         md.Unit,
					DisplayOrder: order + 1,
					IsActive:     true,
				}
				if current, ok := byCode[md.Code]; ok {
					metric.ID = current.ID
					if err := s.metrics.Update(ctx, metric); err != nil {
						return err
					}
					continue
				}
				if _, err := s.metrics.Create(ctx, metric); err != nil {
					return err
				}
				result.CreatedMetrics++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	if result.Skipped {
		slog.Warn("seed skipped: data already exists, use -force to upsert defaults")
	} else {
		slog.Info("seed completed", "created_departments", result.CreatedDepartments, "created_metrics", result.CreatedMetrics)
	}
	return result, nil
}

func (s *Seeder) upsertDepartment(ctx context.Context, def DepartmentDefault) (department.Department, bool, error) {
	current, err := s.departments.GetByCode(ctx, def.Code)
	if err == nil {
		current.Name = def.Name
		current.IsActive = true
		return current, false, s.departments.Update(ctx, current)
	}
	if !errors.Is(err, department.ErrDepartmentNotFound) {
		return department.Department{}, false, err
	}
	created, err := s.departments.Create(ctx, department.Department{
		Code:     def.Code,
		Name:     def.Name,
		IsActive: true,
	})
	return created, true, err
}
