// Package match computes the correspondence between rule records and alarm
// records over the shared signature identifier.
package match

import "github.com/rowanvale/sigbridge/internal/record"

// UnmatchedReason says why a rule ended up without an alarm.
type UnmatchedReason string

const (
	// ReasonNoSignature: the rule has no resolvable signature identifier,
	// so it cannot be matched by definition.
	ReasonNoSignature UnmatchedReason = "no_signature"

	// ReasonNoAlarm: the rule has a signature but no alarm's match value
	// references it.
	ReasonNoAlarm UnmatchedReason = "no_alarm"
)

// Pair is one matched rule/alarm correspondence.
type Pair struct {
	Rule  record.Rule
	Alarm record.Alarm
}

// UnmatchedRule is a rule without an alarm, tagged with the reason.
type UnmatchedRule struct {
	Rule   record.Rule
	Reason UnmatchedReason
}

// Result is the complete correspondence between the two record sets.
type Result struct {
	Matched         []Pair
	UnmatchedRules  []UnmatchedRule
	UnmatchedAlarms []record.Alarm
}

// Match pairs rules with alarms by signature. The lookup key is the
// signature component of each alarm's match value; duplicate signatures are
// last-writer-wins (duplicates are a data-quality issue for the caller's
// report, not this component's concern). Alarms never referenced by any
// rule land in UnmatchedAlarms. Input order is preserved in every output
// slice.
func Match(rules []record.Rule, alarms []record.Alarm) Result {
	bySignature := make(map[string]int, len(alarms))
	for i, a := range alarms {
		if sig := a.MatchSignature(); sig != "" {
			bySignature[sig] = i
		}
	}

	var result Result
	referenced := make(map[int]bool, len(alarms))

	for _, rule := range rules {
		if !rule.SigID.Found() {
			result.UnmatchedRules = append(result.UnmatchedRules, UnmatchedRule{
				Rule:   rule,
				Reason: ReasonNoSignature,
			})
			continue
		}
		i, ok := bySignature[rule.SigID.SigID]
		if !ok {
			result.UnmatchedRules = append(result.UnmatchedRules, UnmatchedRule{
				Rule:   rule,
				Reason: ReasonNoAlarm,
			})
			continue
		}
		referenced[i] = true
		result.Matched = append(result.Matched, Pair{Rule: rule, Alarm: alarms[i]})
	}

	for i, a := range alarms {
		if !referenced[i] {
			result.UnmatchedAlarms = append(result.UnmatchedAlarms, a)
		}
	}
	return result
}
