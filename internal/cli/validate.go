package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowanvale/sigbridge/internal/validate"
)

// ValidationOutput is the validate command's payload, success or not.
type ValidationOutput struct {
	Valid    bool               `json:"valid"`
	Scanned  int                `json:"scanned"`
	Errors   []validate.Finding `json:"errors,omitempty"`
	Warnings []validate.Finding `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a rule or alarm export beyond well-formedness",
		Long: `Validate the structure of a rule or alarm export document: required
elements, severity ranges, embedded sub-documents, and match-value shapes.
Findings accumulate; only markup corruption aborts the scan. Exits 1 when
the document is invalid.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0], kind)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", KindRule, "document kind (rule|alarm)")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, path, kind string) error {
	formatter := newFormatter(opts, cmd)
	if !isValidKind(kind) {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("invalid kind %q: must be rule or alarm", kind), nil)
		return NewExitError(ExitCommandError, "invalid kind")
	}

	var result *validate.Result
	var err error
	if kind == KindRule {
		result, err = validate.RulesFile(path)
	} else {
		result, err = validate.AlarmsFile(path)
	}
	if err != nil {
		return parseFault(formatter, err)
	}

	output := ValidationOutput{
		Valid:    result.Valid(),
		Scanned:  result.Scanned,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}

	if formatter.JSON() {
		if err := formatter.Success(output); err != nil {
			return err
		}
	} else {
		renderValidation(formatter, kind, output)
	}

	if !output.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(output.Errors)))
	}
	return nil
}

func renderValidation(formatter *OutputFormatter, kind string, output ValidationOutput) {
	w := formatter.Writer
	fmt.Fprintf(w, "scanned %d %s element(s)\n", output.Scanned, kind)
	for _, f := range output.Errors {
		fmt.Fprintf(w, "error: %s\n", f.Error())
	}
	for _, f := range output.Warnings {
		fmt.Fprintf(w, "warning: %s\n", f.Error())
	}
	if output.Valid {
		fmt.Fprintln(w, "document is valid")
	} else {
		fmt.Fprintf(w, "document is invalid: %d error(s), %d warning(s)\n",
			len(output.Errors), len(output.Warnings))
	}
}
