package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

const (
	ModeToday = "today"
	ModePrev  = "prev"
)

// SubmitReportRequest carries one department-day submission. The row
// fields are parallel arrays as posted by the form.
type SubmitReportRequest struct {
	DepartmentCode string
	ReportDate     string
	ReporterID     string
	Memo           string

	MemberIDs     []string
	Amounts       []string
	Counts        []string
	CSCounts      []string
	RefugeeCounts []string
	Locations     []string
}

// RowInput is one zipped row before parsing.
type RowInput struct {
	MemberID     string `json:"member_id"`
	Amount       string `json:"amount"`
	Count        string `json:"count"`
	CSCount      string `json:"cs_count"`
	RefugeeCount string `json:"refugee_count"`
	Location     string `json:"location"`
}

// ParsedRow is a validated row ready to become a Line.
type ParsedRow struct {
	MemberID     string
	Amount       int64
	Count        int64
	CSCount      int64
	RefugeeCount int64
	Location     string
}

// Rules describe how a department's form is interpreted.
type Rules struct {
	SplitCounts  bool
	ShowLocation bool
}

func at(values []string, i int, fallback string) string {
	if i < len(values) {
		return values[i]
	}
	return fallback
}

// Rows zips the parallel arrays into max(len, 1) rows. Missing numbers
// default to "0", missing member ids and locations to "".
func (r *SubmitReportRequest) Rows() []RowInput {
	size := 1
	for _, l := range []int{len(r.MemberIDs), len(r.Amounts), len(r.Counts), len(r.CSCounts), len(r.RefugeeCounts), len(r.Locations)} {
		if l > size {
			size = l
		}
	}
	rows := make([]RowInput, 0, size)
	for i := 0; i < size; i++ {
		rows = append(rows, RowInput{
			MemberID:     at(r.MemberIDs, i, ""),
			Amount:       at(r.Amounts, i, "0"),
			Count:        at(r.Counts, i, "0"),
			CSCount:      at(r.CSCounts, i, "0"),
			RefugeeCount: at(r.RefugeeCounts, i, "0"),
			Location:     at(r.Locations, i, ""),
		})
	}
	return rows
}

// ValidateHeader checks the non-row fields and returns the parsed report date.
func (r *SubmitReportRequest) ValidateHeader() (time.Time, error) {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(strings.TrimSpace(r.ReportDate))
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "report_date",
			Message: "report_date must be in YYYY-MM-DD format",
		})
	}
	if validator.RuneLen(r.Memo) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "memo",
			Message: "memo must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return date, nil
}

// MaxLocationLength matches the line location column.
const MaxLocationLength = 100

func parseField(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "0"
	}
	n, ok := validator.ParseInt(s)
	return int64(n), ok
}

func rowError(idx int, format string, args ...interface{}) validator.ValidationError {
	return validator.ValidationError{Field: "rows", Message: fmt.Sprintf("row %d: ", idx) + fmt.Sprintf(format, args...)}
}

// ParseRows validates zipped rows. Rows without a member are skipped.
// allowed holds the ids of members linked to the department. Every
// problem is reported under the "rows" field, one message per row.
func ParseRows(rows []RowInput, allowed map[string]bool, rules Rules) ([]ParsedRow, error) {
	var (
		parsed []ParsedRow
		errs   validator.ValidationErrors

		totalCount, totalAmount int64
	)
	for i, row := range rows {
		idx := i + 1
		memberID := strings.TrimSpace(row.MemberID)
		if memberID == "" {
			continue
		}
		if !allowed[memberID] {
			errs = append(errs, rowError(idx, "invalid member"))
			continue
		}

		amount, numeric := parseField(row.Amount)
		var count, cs, refugee int64
		if rules.SplitCounts {
			var csOK, refOK bool
			cs, csOK = parseField(row.CSCount)
			refugee, refOK = parseField(row.RefugeeCount)
			numeric = numeric && csOK && refOK
		} else {
			var countOK bool
			count, countOK = parseField(row.Count)
			numeric = numeric && countOK
		}

		if !numeric {
			errs = append(errs, rowError(idx, "amount and count must be numeric"))
			continue
		}
		if amount < 0 || count < 0 || cs < 0 || refugee < 0 {
			errs = append(errs, rowError(idx, "amount and count must be zero or greater"))
			continue
		}
		if rules.SplitCounts {
			count = cs + refugee
		}
		if amount > validator.MaxStoredInt || count > validator.MaxStoredInt ||
			cs > validator.MaxStoredInt || refugee > validator.MaxStoredInt {
			errs = append(errs, rowError(idx, "amount and count must not exceed %d", validator.MaxStoredInt))
			continue
		}

		location := strings.TrimSpace(row.Location)
		if !rules.ShowLocation {
			location = ""
		}
		if validator.RuneLen(location) > MaxLocationLength {
			errs = append(errs, rowError(idx, "location must not exceed %d characters", MaxLocationLength))
			continue
		}

		totalCount += count
		totalAmount += amount
		if totalCount > validator.MaxStoredInt || totalAmount > validator.MaxStoredInt {
			errs = append(errs, rowError(idx, "day total of amount and count must not exceed %d", validator.MaxStoredInt))
			continue
		}

		parsed = append(parsed, ParsedRow{
			MemberID:     memberID,
			Amount:       amount,
			Count:        count,
			CSCount:      cs,
			RefugeeCount: refugee,
			Location:     location,
		})
	}

	if len(parsed) == 0 {
		errs = append(errs, validator.ValidationError{Field: "rows", Message: "enter at least one member row"})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return parsed, nil
}

// Summarize returns total count, total amount and the first non-empty location.
func Summarize(rows []ParsedRow) (totalCount, totalAmount int64, location string) {
	for _, row := range rows {
		totalCount += row.Count
		totalAmount += row.Amount
		if location == "" && row.Location != "" {
			location = row.Location
		}
	}
	return totalCount, totalAmount, location
}

// RowsFromLines rebuilds form rows from stored lines for editing.
func RowsFromLines(lines []Line, rules Rules) []RowInput {
	rows := make([]RowInput, 0, len(lines))
	for _, l := range lines {
		memberID := ""
		if l.MemberID != nil {
			memberID = *l.MemberID
		}
		location := l.Location
		if !rules.ShowLocation {
			location = ""
		}
		rows = append(rows, RowInput{
			MemberID:     memberID,
			Amount:       fmt.Sprint(l.Amount),
			Count:        fmt.Sprint(l.Count),
			CSCount:      fmt.Sprint(l.CSCount),
			RefugeeCount: fmt.Sprint(l.RefugeeCount),
			Location:     location,
		})
	}
	if len(rows) == 0 {
		rows = append(rows, EmptyRow())
	}
	return rows
}

func EmptyRow() RowInput {
	return RowInput{Amount: "0", Count: "0", CSCount: "0", RefugeeCount: "0"}
}

type LineResponse struct {
	MemberID     *string `json:"member_id"`
	MemberName   string  `json:"member_name"`
	Amount       int64   `json:"amount"`
	Count        int64   `json:"count"`
	CSCount      int64   `json:"cs_count"`
	RefugeeCount int64   `json:"refugee_count"`
	Location     string  `json:"location"`
}

type ReportResponse struct {
	ID             string         `json:"id"`
	DepartmentCode string         `json:"department_code"`
	DepartmentName string         `json:"department_name"`
	ReportDate     string         `json:"report_date"`
	ReporterName   string         `json:"reporter_name"`
	TotalCount     int64          `json:"total_count"`
	FollowupCount  int64          `json:"followup_count"`
	Location       string         `json:"location"`
	Memo           string         `json:"memo"`
	Lines          []LineResponse `json:"lines"`
}

func ToResponse(r Report) ReportResponse {
	lines := make([]LineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, LineResponse{
			MemberID:     l.MemberID,
			MemberName:   l.MemberName,
			Amount:       l.Amount,
			Count:        l.Count,
			CSCount:      l.CSCount,
			RefugeeCount: l.RefugeeCount,
			Location:     l.Location,
		})
	}
	return ReportResponse{
		ID:             r.ID,
		DepartmentCode: r.DepartmentCode,
		DepartmentName: r.DepartmentName,
		ReportDate:     r.ReportDate.Format("2006-01-02"),
		ReporterName:   r.ReporterName,
		TotalCount:     r.TotalCount,
		FollowupCount:  r.FollowupCount,
		Location:       r.Location,
		Memo:           r.Memo,
		Lines:          lines,
	}
}
