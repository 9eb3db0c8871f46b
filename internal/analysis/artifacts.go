package analysis

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

type summaryRow struct {
	label string
	value any
}

func summaryRows(c Coverage) []summaryRow {
	return []summaryRow{
		{"Total Rules", c.TotalRules},
		{"Total Alarms", c.TotalAlarms},
		{"Rules With Signature", c.RulesWithSignature},
		{"Rules Without Signature", c.RulesWithoutSignature},
		{"Matched Rules", c.MatchedRules},
		{"Matched Alarms", c.MatchedAlarms},
		{"Rules Without Alarms", c.RulesWithoutAlarms},
		{"Alarms Without Rules", c.AlarmsWithoutRules},
		{"Rule Coverage %", c.RuleCoveragePct},
		{"Alarm Coverage %", c.AlarmCoveragePct},
		{"Critical Severity (>=90)", c.Severity.Critical},
		{"High Severity (>=70)", c.Severity.High},
		{"Medium Severity (>=40)", c.Severity.Medium},
		{"Low Severity", c.Severity.Low},
	}
}

// BuildCoverageXLSX renders the coverage summary as an XLSX workbook with a
// summary sheet and, when event usage is present, an events sheet.
func BuildCoverageXLSX(c Coverage) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	f.SetSheetName("Sheet1", summarySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Coverage Analysis")
	for i, row := range summaryRows(c) {
		n := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", n), row.label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", n), row.value)
	}

	if len(c.TopEvents) > 0 {
		eventsSheet := "events"
		if _, err := f.NewSheet(eventsSheet); err != nil {
			return nil, err
		}
		headers := []string{"Event ID", "Total References", "Rule Count", "Alarm Count", "Description", "Audit Policy"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(eventsSheet, cell, h)
		}
		for i, e := range c.TopEvents {
			row := i + 2
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", row), e.EventID)
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("B%d", row), e.TotalReferences)
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("C%d", row), e.RuleCount)
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("D%d", row), e.AlarmCount)
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("E%d", row), e.Description)
			_ = f.SetCellValue(eventsSheet, fmt.Sprintf("F%d", row), e.AuditPolicy)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildCoveragePDF renders the coverage summary as a one-page PDF.
func BuildCoveragePDF(c Coverage, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Coverage Analysis")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", now.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Metric", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Value", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range summaryRows(c) {
		pdf.CellFormat(80, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprint(row.value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(c.TopEvents) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(30, 6, "Event ID", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Total", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Rules", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Alarms", "1", 0, "C", false, 0, "")
		pdf.CellFormat(85, 6, "Description", "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, e := range c.TopEvents {
			pdf.CellFormat(30, 6, e.EventID, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprint(e.TotalReferences), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprint(e.RuleCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprint(e.AlarmCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(85, 6, e.Description, "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
