package department

import "time"

type Department struct {
	ID                string
	Code              string
	Name              string
	IsActive          bool
	DefaultReporterID *string
	CreatedAt         time.Time
}
