package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowanvale/sigbridge/internal/analysis"
	"github.com/rowanvale/sigbridge/internal/match"
	"github.com/rowanvale/sigbridge/internal/sigmap"
	"github.com/rowanvale/sigbridge/internal/xmlstream"
)

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		sigmapPath string
		xlsxPath   string
		pdfPath    string
		topN       int
	)

	cmd := &cobra.Command{
		Use:   "coverage <rules.xml> <alarms.xml>",
		Short: "Compute rule/alarm coverage statistics",
		Long: `Compute coverage statistics for a rule/alarm pairing: totals, matched
and unmatched counts, coverage percentages, and the severity distribution.
With --sigmap, the most-referenced platform event IDs are included. The
summary can also be written as an XLSX workbook or a PDF.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(rootOpts, cmd, args[0], args[1], sigmapPath, xlsxPath, pdfPath, topN)
		},
	}

	cmd.Flags().StringVar(&sigmapPath, "sigmap", "", "signature-to-event mapping file (JSON)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an XLSX coverage workbook here")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF coverage summary here")
	cmd.Flags().IntVar(&topN, "top", 10, "number of top events to include")

	return cmd
}

func runCoverage(opts *RootOptions, cmd *cobra.Command, rulePath, alarmPath, sigmapPath, xlsxPath, pdfPath string, topN int) error {
	formatter := newFormatter(opts, cmd)

	rules, _, err := xmlstream.ReadRulesFile(rulePath)
	if err != nil {
		return parseFault(formatter, err)
	}
	alarms, err := xmlstream.ReadAlarmsFile(alarmPath)
	if err != nil {
		return parseFault(formatter, err)
	}

	coverage := analysis.Analyze(rules, alarms, match.Match(rules, alarms))

	if sigmapPath != "" {
		mapping, err := sigmap.Load(sigmapPath)
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "loading signature mapping", err)
		}
		coverage.TopEvents = analysis.TopEvents(rules, alarms, mapping, topN)
	}

	if xlsxPath != "" {
		data, err := analysis.BuildCoverageXLSX(coverage)
		if err == nil {
			err = os.WriteFile(xlsxPath, data, 0o644)
		}
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing xlsx", err)
		}
		formatter.VerboseLog("wrote %s", xlsxPath)
	}
	if pdfPath != "" {
		data, err := analysis.BuildCoveragePDF(coverage, time.Now())
		if err == nil {
			err = os.WriteFile(pdfPath, data, 0o644)
		}
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing pdf", err)
		}
		formatter.VerboseLog("wrote %s", pdfPath)
	}

	if formatter.JSON() {
		return formatter.Success(coverage)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "rules: %d total, %d with signature, %d matched (%.2f%% coverage)\n",
		coverage.TotalRules, coverage.RulesWithSignature, coverage.MatchedRules, coverage.RuleCoveragePct)
	fmt.Fprintf(w, "alarms: %d total, %d matched (%.2f%% coverage)\n",
		coverage.TotalAlarms, coverage.MatchedAlarms, coverage.AlarmCoveragePct)
	fmt.Fprintf(w, "severity: %d critical, %d high, %d medium, %d low\n",
		coverage.Severity.Critical, coverage.Severity.High, coverage.Severity.Medium, coverage.Severity.Low)
	for _, e := range coverage.TopEvents {
		fmt.Fprintf(w, "event %s: %d reference(s) (%d rule, %d alarm) %s\n",
			e.EventID, e.TotalReferences, e.RuleCount, e.AlarmCount, e.Description)
	}
	return nil
}
