package target

import (
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
)

type Metric struct {
	ID             string
	DepartmentID   string
	DepartmentCode string
	Code           string
	Label          string
	Unit           string
	DisplayOrder   int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (m Metric) Def() kpi.MetricDef {
	return kpi.MetricDef{ID: m.ID, Code: m.Code, Label: m.Label, Unit: m.Unit}
}

type MonthValue struct {
	ID             string
	DepartmentID   string
	DepartmentCode string
	TargetMonth    time.Time
	MetricID       string
	Value          int64
	Status         kpi.Status
}

type Period struct {
	ID        string
	Month     time.Time
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    kpi.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RangeLabel renders the period range as "M/D～M/D".
func (p Period) RangeLabel() string {
	return p.StartDate.Format("1/2") + "～" + p.EndDate.Format("1/2")
}

type PeriodValue struct {
	ID             string
	PeriodID       string
	DepartmentID   string
	DepartmentCode string
	MetricID       string
	Value          int64
}
