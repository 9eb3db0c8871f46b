package transform

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/synth"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// reportTimestamp formats the shared suffix of a run's report pair.
const reportTimestamp = "20060102_150405"

var reportColumns = []string{
	"Rule ID", "Alarm Name", "Severity", "Match Value", "Description",
	"Condition Type", "Alert Rate Min", "Alert Rate Count", "Pct Above",
	"Pct Below", "Offset Min", "X Min", "Match Field",
}

func reportRow(rule record.Rule, alarm record.Alarm) []string {
	return []string{
		rule.ID, alarm.Name, alarm.Severity, alarm.MatchValue, rule.Description,
		synth.DefaultConditionType, synth.DefaultAlertRateMin,
		synth.DefaultAlertRateCount, synth.DefaultPctAbove,
		synth.DefaultPctBelow, synth.DefaultOffsetMin, synth.DefaultXMin,
		synth.DefaultMatchField,
	}
}

// WriteReports writes the CSV and HTML report pair for one run. rules and
// alarms are parallel slices: alarms[i] was transformed from rules[i]. Both
// files share the same timestamp suffix derived from now, so a run's pair is
// always identifiable.
func WriteReports(rules []record.Rule, alarms []record.Alarm, prefix string, now time.Time) (csvPath, htmlPath string, err error) {
	ts := now.Format(reportTimestamp)
	csvPath = fmt.Sprintf("%s_%s.csv", prefix, ts)
	htmlPath = fmt.Sprintf("%s_%s.html", prefix, ts)

	if err := writeCSVReport(csvPath, rules, alarms); err != nil {
		return "", "", err
	}
	if err := writeHTMLReport(htmlPath, rules, alarms, now); err != nil {
		return "", "", err
	}
	return csvPath, htmlPath, nil
}

func writeCSVReport(path string, rules []record.Rule, alarms []record.Alarm) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportColumns); err != nil {
		return err
	}
	for i := range alarms {
		if err := w.Write(reportRow(rules[i], alarms[i])); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeHTMLReport(path string, rules []record.Rule, alarms []record.Alarm, now time.Time) error {
	var b strings.Builder
	b.WriteString(`<html><head><meta charset="utf-8">`)
	b.WriteString(`<style>table{border-collapse:collapse;}th,td{border:1px solid #ccc;padding:5px;}</style>`)
	b.WriteString("</head><body>\n")
	fmt.Fprintf(&b, "<h2>Alarm Report - %s</h2>\n", now.Format(time.RFC3339))

	b.WriteString("<table><tr>")
	for _, h := range reportColumns {
		fmt.Fprintf(&b, "<th>%s</th>", xmltree.EscapeText(h))
	}
	b.WriteString("</tr>\n")

	for i := range alarms {
		b.WriteString("<tr>")
		for _, cell := range reportRow(rules[i], alarms[i]) {
			fmt.Fprintf(&b, "<td>%s</td>", xmltree.EscapeText(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing html report: %w", err)
	}
	return nil
}
