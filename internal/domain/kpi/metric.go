package kpi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Metric codes with a built-in actual value.
const (
	CodeCount        = "count"
	CodeAmount       = "amount"
	CodeCSCount      = "cs_count"
	CodeRefugeeCount = "refugee_count"
)

const NoValue = "-"

// Totals is the sum of report lines for one department over a date range.
type Totals struct {
	Count        int64 `json:"count"`
	Amount       int64 `json:"amount"`
	CSCount      int64 `json:"cs_count"`
	RefugeeCount int64 `json:"refugee_count"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Count:        t.Count + o.Count,
		Amount:       t.Amount + o.Amount,
		CSCount:      t.CSCount + o.CSCount,
		RefugeeCount: t.RefugeeCount + o.RefugeeCount,
	}
}

// MetricActual picks the total matching code. Codes without a built-in
// mapping have no measurable actual and yield 0.
func MetricActual(code string, t Totals) int64 {
	switch code {
	case CodeCount:
		return t.Count
	case CodeAmount:
		return t.Amount
	case CodeCSCount:
		return t.CSCount
	case CodeRefugeeCount:
		return t.RefugeeCount
	default:
		return 0
	}
}

// Rate formats actual/target*100 with one decimal and a trailing "%".
// A zero target yields "-".
func Rate(actual, target int64) string {
	if target <= 0 {
		return NoValue
	}
	pct := decimal.NewFromInt(actual).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(target), 8)
	return pct.StringFixed(1) + "%"
}

// MetricDef is the subset of a target metric the engine needs.
type MetricDef struct {
	ID    string
	Code  string
	Label string
	Unit  string
}

type DetailRow struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Unit       string `json:"unit"`
	Target     int64  `json:"target"`
	Actual     int64  `json:"actual"`
	TargetText string `json:"target_text"`
	ActualText string `json:"actual_text"`
	Rate       string `json:"rate"`
}

// MailLine renders the row as "<label> <actual>/<target><unit> 達成率<rate>".
func (r DetailRow) MailLine() string {
	return fmt.Sprintf("%s %s/%s%s 達成率%s", r.Label, r.ActualText, r.TargetText, r.Unit, r.Rate)
}

// DetailRows builds one row per metric. targets is keyed by metric id;
// a missing target counts as 0.
func DetailRows(metrics []MetricDef, targets map[string]int64, totals Totals) []DetailRow {
	rows := make([]DetailRow, 0, len(metrics))
	for _, m := range metrics {
		target := targets[m.ID]
		actual := MetricActual(m.Code, totals)
		rows = append(rows, DetailRow{
			Code:       m.Code,
			Label:      m.Label,
			Unit:       m.Unit,
			Target:     target,
			Actual:     actual,
			TargetText: FormatThousands(target),
			ActualText: FormatThousands(actual),
			Rate:       Rate(actual, target),
		})
	}
	return rows
}

// Triple is the " / "-joined target, actual and rate text of a metric set.
type Triple struct {
	Target string `json:"target"`
	Actual string `json:"actual"`
	Rate   string `json:"rate"`
}

func FormatTriples(rows []DetailRow) Triple {
	if len(rows) == 0 {
		return Triple{Target: NoValue, Actual: NoValue, Rate: NoValue}
	}
	targets := make([]string, 0, len(rows))
	actuals := make([]string, 0, len(rows))
	rates := make([]string, 0, len(rows))
	for _, r := range rows {
		targets = append(targets, fmt.Sprintf("%s %d%s", r.Label, r.Target, r.Unit))
		actuals = append(actuals, fmt.Sprintf("%s %d%s", r.Label, r.Actual, r.Unit))
		rates = append(rates, fmt.Sprintf("%s %s", r.Label, r.Rate))
	}
	return Triple{
		Target: strings.Join(targets, " / "),
		Actual: strings.Join(actuals, " / "),
		Rate:   strings.Join(rates, " / "),
	}
}

// FormatThousands renders n with comma group separators.
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func FormatYen(n int64) string {
	return FormatThousands(n) + "円"
}

// PeriodName builds the display name of a period, e.g. "2026年度2月 第1次路程".
func PeriodName(year, month, sequence int) string {
	return fmt.Sprintf("%d年度%d月 第%d次路程", year, month, sequence)
}

// MemberTotal is one member's contribution to a department on a day.
type MemberTotal struct {
	MemberName   string `json:"member_name"`
	Count        int64  `json:"count"`
	Amount       int64  `json:"amount"`
	CSCount      int64  `json:"cs_count"`
	RefugeeCount int64  `json:"refugee_count"`
}

// SortMemberTotals orders by amount desc, count desc, then name.
func SortMemberTotals(rows []MemberTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].MemberName < rows[j].MemberName
	})
}
