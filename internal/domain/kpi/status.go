package kpi

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusPlanned  Status = "planned"
	StatusFinished Status = "finished"
)

// DateOf truncates t to its calendar date in t's own location and
// returns it as midnight UTC, which is how DATE columns come back from pgx.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// MonthStatus compares the month containing month with the month containing today.
func MonthStatus(month, today time.Time) Status {
	m, t := MonthStart(month), MonthStart(today)
	switch {
	case m.Equal(t):
		return StatusActive
	case m.After(t):
		return StatusPlanned
	default:
		return StatusFinished
	}
}

// PeriodStatus treats both ends of the range as inclusive.
func PeriodStatus(start, end, today time.Time) Status {
	s, e, t := DateOf(start), DateOf(end), DateOf(today)
	if !t.Before(s) && !t.After(e) {
		return StatusActive
	}
	if t.Before(s) {
		return StatusPlanned
	}
	return StatusFinished
}

// Overlaps reports whether the inclusive ranges [s1,e1] and [s2,e2] share a day.
// The period repository's ListOverlapping applies the same predicate in SQL
// (start_date <= end AND start <= end_date); SavePeriod re-checks its rows here.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !DateOf(s1).After(DateOf(e2)) && !DateOf(s2).After(DateOf(e1))
}
