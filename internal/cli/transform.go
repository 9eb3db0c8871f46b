package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowanvale/sigbridge/internal/transform"
)

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outputFile   string
		templateFile string
		configFile   string
		reportPrefix string
		maxNameLen   int
	)

	cmd := &cobra.Command{
		Use:   "transform <rules.xml>",
		Short: "Transform a rule export into an alarm export",
		Long: `Transform every rule in the export into an alarm: names are bounded
with a collision-safe truncation, match values link each alarm back to its
rule's signature, and a CSV/HTML report pair records the run. Rules with no
resolvable signature are excluded and named in the result. With --template,
generated alarms overwrite only the name, version, note, and match value of
the template; everything else the template author configured survives.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := transform.DefaultOptions()
			if configFile != "" {
				var err error
				opts, err = transform.LoadOptions(configFile)
				if err != nil {
					formatter := newFormatter(rootOpts, cmd)
					formatter.Error(ErrCodeGeneric, err.Error(), nil)
					return WrapExitError(ExitCommandError, "loading config", err)
				}
			}
			if cmd.Flags().Changed("report-prefix") {
				opts.ReportPrefix = reportPrefix
			}
			if cmd.Flags().Changed("max-name-len") {
				opts.MaxNameLen = maxNameLen
			}

			return runTransform(rootOpts, cmd, transform.Request{
				RuleFile:     args[0],
				OutputFile:   outputFile,
				TemplateFile: templateFile,
				Options:      opts,
			})
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the alarms document here")
	cmd.Flags().StringVar(&templateFile, "template", "", "alarm template document")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML options file")
	cmd.Flags().StringVar(&reportPrefix, "report-prefix", "report", "report file prefix")
	cmd.Flags().IntVar(&maxNameLen, "max-name-len", 128, "maximum generated alarm name length")

	return cmd
}

func runTransform(opts *RootOptions, cmd *cobra.Command, req transform.Request) error {
	formatter := newFormatter(opts, cmd)

	result := transform.Run(req)
	if !result.Success {
		formatter.Error(ErrCodeTransform, result.Error, result)
		return NewExitError(ExitFailure, result.Error)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run %s: %d rule(s) processed, %d alarm(s) generated (version %s)\n",
		result.RunID, result.RulesProcessed, result.AlarmsGenerated, result.Version)
	for _, s := range result.SkippedRules {
		fmt.Fprintf(w, "skipped %s: %s\n", s.RuleID, s.Reason)
	}
	if result.OutputFile != "" {
		fmt.Fprintf(w, "alarms document: %s\n", result.OutputFile)
	}
	fmt.Fprintf(w, "reports: %s, %s\n", result.CSVReport, result.HTMLReport)
	return nil
}
