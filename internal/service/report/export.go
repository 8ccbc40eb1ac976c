package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

var historyHeaders = []string{
	"Date", "Department", "Department Name", "Reporter", "Total Count", "Followup Amount",
	"Location", "Memo", "Member", "Amount", "Count", "CS Count", "Refugee Count", "Line Location",
}

// ExportHistory writes the report history as an xlsx workbook, one row per line.
// Reports without lines still get one row.
func (s *ReportServiceImpl) ExportHistory(ctx context.Context, w io.Writer) error {
	reports, err := s.History(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(historySheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range historyHeaders {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(historySheet, c, h)
	}
	last, _ := excelize.ColumnNumberToName(len(historyHeaders))
	f.SetCellStyle(historySheet, "A1", last+"1", headerStyle)
	f.SetColWidth(historySheet, "A", "A", 12)
	f.SetColWidth(historySheet, "H", "H", 30)

	row := 2
	for _, r := range reports {
		header := []any{
			r.ReportDate.Format("2006-01-02"), r.DepartmentCode, r.DepartmentName, r.ReporterName,
			r.TotalCount, r.FollowupCount, r.Location, r.Memo,
		}
		if len(r.Lines) == 0 {
			if err := f.SetSheetRow(historySheet, cell(row), &header); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
			continue
		}
		for _, l := range r.Lines {
			values := append(append([]any{}, header...),
				l.MemberName, l.Amount, l.Count, l.CSCount, l.RefugeeCount, l.Location,
			)
			if err := f.SetSheetRow(historySheet, cell(row), &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		slog.Error("failed to write history workbook", "error", err)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cell(row int) string {
	return fmt.Sprintf("A%d", row)
}
