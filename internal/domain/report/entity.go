package report

import "time"

type Report struct {
	ID             string
	DepartmentID   string
	DepartmentCode string
	DepartmentName string
	ReportDate     time.Time
	ReporterID     *string
	ReporterName   string
	TotalCount     int64
	FollowupCount  int64
	Location       string
	Memo           string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Lines []Line

	// Sums over Lines, filled by listing queries.
	CSCountTotal      int64
	RefugeeCountTotal int64
}

type Line struct {
	ID           string
	ReportID     string
	MemberID     *string
	MemberName   string
	Amount       int64
	Count        int64
	CSCount      int64
	RefugeeCount int64
	Location     string
	CreatedAt    time.Time
}
