package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/store"
	"github.com/rowanvale/sigbridge/internal/xmlstream"
)

// ParseResult is the parse command's success payload.
type ParseResult struct {
	Kind    string              `json:"kind"`
	Count   int                 `json:"count"`
	Version string              `json:"version,omitempty"`
	Records []map[string]string `json:"records"`
	Saved   bool                `json:"saved,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Stream-parse a rule or alarm export into flat records",
		Long: `Stream-parse a rule or alarm export document and print one flat
field map per record. With --db, records are also persisted for later
re-export.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, cmd, args[0], kind, dbPath)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", KindRule, "document kind (rule|alarm)")
	cmd.Flags().StringVar(&dbPath, "db", "", "persist parsed records to this database")

	return cmd
}

func runParse(opts *RootOptions, cmd *cobra.Command, path, kind, dbPath string) error {
	formatter := newFormatter(opts, cmd)
	if !isValidKind(kind) {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("invalid kind %q: must be rule or alarm", kind), nil)
		return NewExitError(ExitCommandError, "invalid kind")
	}

	result := ParseResult{Kind: kind}
	switch kind {
	case KindRule:
		rules, version, err := xmlstream.ReadRulesFile(path)
		if err != nil {
			return parseFault(formatter, err)
		}
		result.Version = version
		result.Records = make([]map[string]string, len(rules))
		for i, r := range rules {
			result.Records[i] = r.Fields()
		}
	case KindAlarm:
		alarms, err := xmlstream.ReadAlarmsFile(path)
		if err != nil {
			return parseFault(formatter, err)
		}
		result.Records = make([]map[string]string, len(alarms))
		for i, a := range alarms {
			result.Records[i] = a.Fields()
		}
	}
	result.Count = len(result.Records)
	formatter.VerboseLog("parsed %d %s record(s) from %s", result.Count, kind, path)

	if dbPath != "" {
		if err := saveRecords(dbPath, kind, result.Records); err != nil {
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "persisting records", err)
		}
		result.Saved = true
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "parsed %d %s record(s)\n", result.Count, kind)
	if result.Version != "" {
		fmt.Fprintf(formatter.Writer, "document version: %s\n", result.Version)
	}
	for _, m := range result.Records {
		fmt.Fprintf(formatter.Writer, "- %s\n", recordLabel(kind, m))
	}
	if result.Saved {
		fmt.Fprintf(formatter.Writer, "saved to %s\n", dbPath)
	}
	return nil
}

func recordLabel(kind string, fields map[string]string) string {
	if kind == KindRule {
		r := record.RuleFromFields(fields)
		if r.SigID.Found() {
			return fmt.Sprintf("%s (%s) sig=%s", r.ID, r.Message, r.SigID.SigID)
		}
		return fmt.Sprintf("%s (%s) sig=unresolved", r.ID, r.Message)
	}
	a := record.AlarmFromFields(fields)
	return fmt.Sprintf("%s match=%s severity=%s", a.Name, a.MatchValue, a.Severity)
}

func saveRecords(dbPath, kind string, records []map[string]string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if kind == KindRule {
		return s.SaveRules(ctx, records)
	}
	return s.SaveAlarms(ctx, records)
}

// parseFault renders a parse failure and maps it to an exit code: syntax
// corruption and structural failure variants are data-quality problems
// (exit 1), anything else (unreadable file) is a command error.
func parseFault(formatter *OutputFormatter, err error) error {
	var parseErr *xmlstream.ParseError
	if errors.As(err, &parseErr) {
		formatter.Error(ErrCodeSyntax, err.Error(), string(parseErr.Code))
		return WrapExitError(ExitFailure, "parse failed", err)
	}
	formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "parse failed", err)
}
