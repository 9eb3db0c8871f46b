package transform

import (
	"time"

	"github.com/google/uuid"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/xmlstream"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// Request describes one transformation run.
type Request struct {
	RuleFile     string
	OutputFile   string // optional; empty skips the document write
	TemplateFile string // optional; empty uses the synthesizer
	Options      Options
}

// SkippedRule names a rule excluded from alarm generation and why.
type SkippedRule struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// RunResult is the structured outcome of a run. Failures come back as a
// result with Success=false and zero counts, never as a raised fault, so
// batch callers can report partial progress.
type RunResult struct {
	RunID           string        `json:"run_id"`
	Success         bool          `json:"success"`
	Error           string        `json:"error,omitempty"`
	Version         string        `json:"version,omitempty"`
	RulesProcessed  int           `json:"rules_processed"`
	AlarmsGenerated int           `json:"alarms_generated"`
	SkippedRules    []SkippedRule `json:"skipped_rules,omitempty"`
	OutputFile      string        `json:"output_file,omitempty"`
	CSVReport       string        `json:"csv_report,omitempty"`
	HTMLReport      string        `json:"html_report,omitempty"`
}

// Run executes the full rule-to-alarm transformation: parse the rule
// document, transform every rule with a resolved signature, assemble the
// alarms document (template or synthesized), write it, and emit the report
// pair. Rules that cannot resolve a signature are excluded and named in
// SkippedRules rather than silently dropped.
func Run(req Request) RunResult {
	runID := uuid.NewString()
	opts := req.Options.withDefaults()

	fail := func(err error) RunResult {
		return RunResult{RunID: runID, Success: false, Error: err.Error()}
	}

	var template *xmltree.Node
	if req.TemplateFile != "" {
		var err error
		template, err = LoadTemplate(req.TemplateFile)
		if err != nil {
			return fail(err)
		}
	}

	rules, version, err := xmlstream.ReadRulesFile(req.RuleFile)
	if err != nil {
		return fail(err)
	}
	if version == "" {
		version = opts.Version
	}

	var (
		kept    []record.Rule
		alarms  []record.Alarm
		skipped []SkippedRule
	)
	for _, rule := range rules {
		if rule.ID == "" {
			continue
		}
		if !rule.SigID.Found() {
			skipped = append(skipped, SkippedRule{
				RuleID: rule.ID,
				Reason: "no resolvable signature identifier",
			})
			continue
		}
		kept = append(kept, rule)
		alarms = append(alarms, Transform(rule, opts.MaxNameLen, version, "", opts.DefaultPrefix))
	}

	root, err := BuildAlarms(template, alarms)
	if err != nil {
		return fail(err)
	}
	if req.OutputFile != "" {
		if err := WriteDocument(root, req.OutputFile); err != nil {
			return fail(err)
		}
	}

	csvPath, htmlPath, err := WriteReports(kept, alarms, opts.ReportPrefix, time.Now())
	if err != nil {
		return fail(err)
	}

	return RunResult{
		RunID:           runID,
		Success:         true,
		Version:         version,
		RulesProcessed:  len(rules),
		AlarmsGenerated: len(alarms),
		SkippedRules:    skipped,
		OutputFile:      req.OutputFile,
		CSVReport:       csvPath,
		HTMLReport:      htmlPath,
	}
}
