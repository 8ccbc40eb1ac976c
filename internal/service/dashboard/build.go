package dashboard

import (
	"fmt"

	"github.com/cmlabs-hris/activity-report/internal/domain/dashboard"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
)

type mailSectionDef struct {
	code    string
	heading string
}

// Mail sections in display order; departments that do not exist are skipped.
var mailSections = []mailSectionDef{
	{code: "UN", heading: "UN①"},
	{code: "WV", heading: "UN②"},
	{code: "STYLE2", heading: "Styleチーム"},
	{code: "STYLE1", heading: "Styleチーム"},
}

// amountSummaryCodes share one combined amount line in the mail.
var amountSummaryCodes = []string{"UN", "WV"}

func (s *DashboardServiceImpl) buildResponse(snap *snapshot) *dashboard.DashboardResponse {
	daily := snap.dailyTotals()
	latest := snap.latestReports()
	loc := s.now().Location()

	resp := &dashboard.DashboardResponse{
		Date:           snap.day.Format("2006/01/02"),
		SubmissionRows: make([]dashboard.SubmissionRow, 0, len(snap.departments)),
		KPICards:       make([]dashboard.KPICard, 0, len(snap.departments)),
		TargetProgress: make([]dashboard.TargetProgressRow, 0, len(snap.departments)),
		MonthSummary:   fmt.Sprintf("%d/%d", snap.month.Year(), int(snap.month.Month())),
		MonthStatus:    string(kpi.MonthStatus(snap.month, snap.day)),
		PeriodSummary:  kpi.NoValue,
		PeriodStatus:   kpi.NoValue,
	}
	if snap.period != nil {
		resp.PeriodSummary = snap.period.Name
		resp.PeriodStatus = string(kpi.PeriodStatus(snap.period.StartDate, snap.period.EndDate, snap.day))
	}

	for _, d := range snap.departments {
		code := d.Code
		split := s.splitCodes[code]
		totals := daily[code]

		row := dashboard.SubmissionRow{
			Code:           code,
			Label:          d.Name,
			HasSplitCounts: split,
		}
		if r, ok := latest[code]; ok {
			row.Status = dashboard.SubmissionSubmitted
			row.ReportID = r.ReportID
			row.ReporterName = r.ReporterName
			if row.ReporterName == "" {
				row.ReporterName = kpi.NoValue
			}
			row.SubmittedTime = r.SubmittedAt.In(loc).Format("15:04")
			row.Count = kpi.FormatThousands(totals.Count)
			row.AmountText = kpi.FormatThousands(totals.Amount)
			row.CSCount = "0"
			row.RefugeeCount = "0"
			if split {
				row.CSCount = kpi.FormatThousands(totals.CSCount)
				row.RefugeeCount = kpi.FormatThousands(totals.RefugeeCount)
			}
		} else {
			row.Status = dashboard.SubmissionNotSubmitted
			row.ReporterName = kpi.NoValue
			row.SubmittedTime = kpi.NoValue
			row.Count = kpi.NoValue
			row.AmountText = kpi.NoValue
			row.CSCount = kpi.NoValue
			row.RefugeeCount = kpi.NoValue
		}
		resp.SubmissionRows = append(resp.SubmissionRows, row)

		card := dashboard.KPICard{
			Code:           code,
			Title:          d.Name,
			Count:          totals.Count,
			Amount:         totals.Amount,
			AmountText:     kpi.FormatThousands(totals.Amount),
			HasSplitCounts: split,
			CSCount:        totals.CSCount,
			RefugeeCount:   totals.RefugeeCount,
			Members:        []dashboard.MemberRow{},
		}
		for _, m := range snap.memberRows(code) {
			card.Members = append(card.Members, dashboard.MemberRow{
				MemberName:   m.MemberName,
				Count:        m.Count,
				Amount:       m.Amount,
				AmountText:   kpi.FormatThousands(m.Amount),
				CSCount:      m.CSCount,
				RefugeeCount: m.RefugeeCount,
			})
		}
		resp.KPICards = append(resp.KPICards, card)

		monthRows := snap.monthDetails(code)
		periodRows := snap.periodDetails(code)
		resp.TargetProgress = append(resp.TargetProgress, dashboard.TargetProgressRow{
			Code:          code,
			Label:         d.Name,
			Month:         kpi.FormatTriples(monthRows),
			Period:        kpi.FormatTriples(periodRows),
			MonthDetails:  monthRows,
			PeriodDetails: periodRows,
		})
	}
	return resp
}

func mailLines(rows []kpi.DetailRow) []string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.MailLine())
	}
	return lines
}

func (s *DashboardServiceImpl) buildMailPayload(snap *snapshot) dashboard.MailPayload {
	daily := snap.dailyTotals()
	latest := snap.latestReports()
	names := make(map[string]string, len(snap.departments))
	for _, d := range snap.departments {
		names[d.Code] = d.Name
	}

	payload := dashboard.MailPayload{
		ReportDate:  snap.day.Format("2006/01/02"),
		Sections:    []dashboard.MailSection{},
		PeriodName:  kpi.NoValue,
		PeriodRange: kpi.NoValue,
	}
	if snap.period != nil {
		payload.PeriodName = snap.period.Name
		payload.PeriodRange = snap.period.RangeLabel()
	}

	for _, def := range mailSections {
		name, ok := names[def.code]
		if !ok {
			continue
		}
		_, hasReport := latest[def.code]
		section := dashboard.MailSection{
			Code:            def.code,
			Heading:         def.heading,
			Name:            name,
			HasReport:       hasReport,
			DailyCount:      daily[def.code].Count,
			DailyAmountText: kpi.FormatYen(daily[def.code].Amount),
			MemberLines:     []dashboard.MailMemberLine{},
			PeriodLines:     mailLines(snap.periodDetails(def.code)),
			MonthLines:      mailLines(snap.monthDetails(def.code)),
		}
		for _, m := range snap.memberRows(def.code) {
			section.MemberLines = append(section.MemberLines, dashboard.MailMemberLine{
				Name:       m.MemberName,
				Count:      m.Count,
				AmountText: kpi.FormatYen(m.Amount),
			})
		}
		payload.Sections = append(payload.Sections, section)
	}

	var actual, targetTotal int64
	for _, code := range amountSummaryCodes {
		if _, ok := names[code]; !ok {
			continue
		}
		actual += snap.monthActuals[code].Amount
		for _, m := range snap.metrics[code] {
			if m.Code == kpi.CodeAmount {
				targetTotal += snap.monthTargets[code][m.ID]
			}
		}
	}
	payload.UNWVSummary = dashboard.AmountSummary{
		ActualText: kpi.FormatYen(actual),
		TargetText: kpi.FormatYen(targetTotal),
		Rate:       kpi.Rate(actual, targetTotal),
	}
	return payload
}
