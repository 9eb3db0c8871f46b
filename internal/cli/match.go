package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowanvale/sigbridge/internal/match"
	"github.com/rowanvale/sigbridge/internal/xmlstream"
)

// MatchedPair is one rule/alarm correspondence in the match payload.
type MatchedPair struct {
	RuleID    string `json:"rule_id"`
	AlarmName string `json:"alarm_name"`
	SigID     string `json:"sig_id"`
}

// UnmatchedRuleOutput is one unmatched rule with its reason.
type UnmatchedRuleOutput struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// MatchOutput is the match command's payload.
type MatchOutput struct {
	Matched         []MatchedPair         `json:"matched"`
	UnmatchedRules  []UnmatchedRuleOutput `json:"unmatched_rules"`
	UnmatchedAlarms []string              `json:"unmatched_alarms"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <rules.xml> <alarms.xml>",
		Short: "Compute rule/alarm correspondence by signature",
		Long: `Pair every rule with the alarm whose match value references the rule's
signature. Rules without a resolvable signature and rules whose signature no
alarm references are reported separately, as are alarms no rule points at.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runMatch(opts *RootOptions, cmd *cobra.Command, rulePath, alarmPath string) error {
	formatter := newFormatter(opts, cmd)

	rules, _, err := xmlstream.ReadRulesFile(rulePath)
	if err != nil {
		return parseFault(formatter, err)
	}
	alarms, err := xmlstream.ReadAlarmsFile(alarmPath)
	if err != nil {
		return parseFault(formatter, err)
	}

	result := match.Match(rules, alarms)
	output := MatchOutput{
		Matched:         make([]MatchedPair, 0, len(result.Matched)),
		UnmatchedRules:  make([]UnmatchedRuleOutput, 0, len(result.UnmatchedRules)),
		UnmatchedAlarms: make([]string, 0, len(result.UnmatchedAlarms)),
	}
	for _, p := range result.Matched {
		output.Matched = append(output.Matched, MatchedPair{
			RuleID:    p.Rule.ID,
			AlarmName: p.Alarm.Name,
			SigID:     p.Rule.SigID.SigID,
		})
	}
	for _, u := range result.UnmatchedRules {
		output.UnmatchedRules = append(output.UnmatchedRules, UnmatchedRuleOutput{
			RuleID: u.Rule.ID,
			Reason: string(u.Reason),
		})
	}
	for _, a := range result.UnmatchedAlarms {
		output.UnmatchedAlarms = append(output.UnmatchedAlarms, a.Name)
	}

	if formatter.JSON() {
		return formatter.Success(output)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%d matched, %d unmatched rule(s), %d unmatched alarm(s)\n",
		len(output.Matched), len(output.UnmatchedRules), len(output.UnmatchedAlarms))
	for _, p := range output.Matched {
		fmt.Fprintf(w, "match: %s -> %s (sig %s)\n", p.RuleID, p.AlarmName, p.SigID)
	}
	for _, u := range output.UnmatchedRules {
		fmt.Fprintf(w, "unmatched rule: %s (%s)\n", u.RuleID, u.Reason)
	}
	for _, name := range output.UnmatchedAlarms {
		fmt.Fprintf(w, "unmatched alarm: %s\n", name)
	}
	return nil
}
