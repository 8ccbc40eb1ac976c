package dashboard

import "github.com/cmlabs-hris/activity-report/internal/domain/kpi"

const (
	SubmissionSubmitted    = "submitted"
	SubmissionNotSubmitted = "not_submitted"
)

type SubmissionRow struct {
	Code           string `json:"code"`
	Label          string `json:"label"`
	Status         string `json:"status"`
	ReportID       string `json:"report_id,omitempty"`
	ReporterName   string `json:"reporter_name"`
	SubmittedTime  string `json:"submitted_time"`
	Count          string `json:"count"`
	AmountText     string `json:"amount_text"`
	HasSplitCounts bool   `json:"has_split_counts"`
	CSCount        string `json:"cs_count"`
	RefugeeCount   string `json:"refugee_count"`
}

type MemberRow struct {
	MemberName   string `json:"member_name"`
	Count        int64  `json:"count"`
	Amount       int64  `json:"amount"`
	AmountText   string `json:"amount_text"`
	CSCount      int64  `json:"cs_count"`
	RefugeeCount int64  `json:"refugee_count"`
}

type KPICard struct {
	Code           string      `json:"code"`
	Title          string      `json:"title"`
	Count          int64       `json:"count"`
	Amount         int64       `json:"amount"`
	AmountText     string      `json:"amount_text"`
	HasSplitCounts bool        `json:"has_split_counts"`
	CSCount        int64       `json:"cs_count"`
	RefugeeCount   int64       `json:"refugee_count"`
	Members        []MemberRow `json:"members"`
}

type TargetProgressRow struct {
	Code   string     `json:"code"`
	Label  string     `json:"label"`
	Month  kpi.Triple `json:"month"`
	Period kpi.Triple `json:"period"`

	MonthDetails  []kpi.DetailRow `json:"month_details"`
	PeriodDetails []kpi.DetailRow `json:"period_details"`
}

// DashboardResponse is the admin KPI view for one base date.
type DashboardResponse struct {
	Mode           string              `json:"mode"`
	Date           string              `json:"date"`
	SubmissionRows []SubmissionRow     `json:"submission_rows"`
	KPICards       []KPICard           `json:"kpi_cards"`
	MonthSummary   string              `json:"target_month_summary"`
	MonthStatus    string              `json:"target_month_status"`
	PeriodSummary  string              `json:"target_period_summary"`
	PeriodStatus   string              `json:"target_period_status"`
	TargetProgress []TargetProgressRow `json:"target_progress_rows"`
}

type MailMemberLine struct {
	Name       string `json:"name"`
	Count      int64  `json:"count"`
	AmountText string `json:"amount_text"`
}

type MailSection struct {
	Code            string           `json:"code"`
	Heading         string           `json:"heading"`
	Name            string           `json:"name"`
	HasReport       bool             `json:"has_report"`
	DailyCount      int64            `json:"daily_count"`
	DailyAmountText string           `json:"daily_amount_text"`
	MemberLines     []MailMemberLine `json:"member_lines"`
	PeriodLines     []string         `json:"period_lines"`
	MonthLines      []string         `json:"month_lines"`
}

type AmountSummary struct {
	ActualText string `json:"actual_text"`
	TargetText string `json:"target_text"`
	Rate       string `json:"rate"`
}

// MailPayload is the mail-style summary for one base date.
type MailPayload struct {
	ReportDate  string        `json:"report_date"`
	Sections    []MailSection `json:"sections"`
	PeriodName  string        `json:"period_name"`
	PeriodRange string        `json:"period_range"`
	UNWVSummary AmountSummary `json:"un_wv_summary"`
}

// MailPayloads holds the summary for today and the previous day.
type MailPayloads struct {
	Today MailPayload `json:"today"`
	Prev  MailPayload `json:"prev"`
}

// ReportIndexResponse backs the report role's landing page.
type ReportIndexResponse struct {
	Departments []DepartmentButton `json:"departments"`
	DashboardResponse
}

type DepartmentButton struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
