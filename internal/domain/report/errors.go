package report

import "errors"

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrReportDateTaken    = errors.New("a report for this department and date already exists")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrReporterNotLinked  = errors.New("reporter is not a member of the department")
)
