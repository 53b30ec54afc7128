package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF renders a report as a landscape A4 week grid: one row per
// line with its daily target and Monday-Sunday values, row totals, and the
// weekly total. Absent cells stay blank.
func RenderPDF(details ReportWithDetails) ([]byte, error) {
	weekStart, err := ParseISO(details.WeekStartDate)
	if err != nil {
		return nil, fmt.Errorf("report week start: %w", err)
	}
	weekDates := WeekDates(weekStart)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(120, 10, "Weekly Production Report")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", details.Employee.FullName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Week: %s", WeekRange(weekStart)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", details.Status))
	if details.SubmittedAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("  Submitted: %s", details.SubmittedAt.Format("2006-01-02 15:04")))
	}
	pdf.Ln(10)

	const actionWidth, targetWidth, dayWidth, totalWidth = 55.0, 22.0, 22.0, 22.0

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(actionWidth, 8, "Action", "1", 0, "L", false, 0, "")
	pdf.CellFormat(targetWidth, 8, "Target", "1", 0, "C", false, 0, "")
	for i, date := range weekDates {
		header := fmt.Sprintf("%s %s", DayNamesShort[i], FormatDisplay(date))
		pdf.CellFormat(dayWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(totalWidth, 8, "Total", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range details.Lines {
		byDate := make(map[string]int, len(line.Entries))
		for _, entry := range line.Entries {
			byDate[entry.EntryDate] = entry.Value
		}

		pdf.CellFormat(actionWidth, 8, line.Action.Name, "1", 0, "L", false, 0, "")
		target := ""
		if line.DailyTarget != nil {
			target = strconv.Itoa(*line.DailyTarget)
		}
		pdf.CellFormat(targetWidth, 8, target, "1", 0, "C", false, 0, "")
		for _, date := range weekDates {
			cell := ""
			if value, ok := byDate[FormatISO(date)]; ok {
				cell = strconv.Itoa(value)
			}
			pdf.CellFormat(dayWidth, 8, cell, "1", 0, "C", false, 0, "")
		}
		pdf.CellFormat(totalWidth, 8, strconv.Itoa(RowTotal(line)), "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(actionWidth+targetWidth+7*dayWidth, 8, "Weekly Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(totalWidth, 8, strconv.Itoa(WeeklyTotal(&details)), "1", 1, "C", false, 0, "")

	if details.ManagerComment != nil && *details.ManagerComment != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 7, fmt.Sprintf("Manager comment: %s", *details.ManagerComment))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
