// Package analysis computes rule/alarm coverage statistics from a match
// result and renders them as report artifacts.
package analysis

import (
	"math"
	"sort"
	"strconv"

	"github.com/rowanvale/sigbridge/internal/match"
	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/sigmap"
)

// Severity bucket thresholds.
const (
	criticalThreshold = 90
	highThreshold     = 70
	mediumThreshold   = 40
)

// SeverityBuckets counts rules per severity band. Non-numeric severities
// land in Low.
type SeverityBuckets struct {
	Critical int `json:"critical"` // >= 90
	High     int `json:"high"`     // >= 70
	Medium   int `json:"medium"`   // >= 40
	Low      int `json:"low"`
}

// EventUsage is the reference count for one platform event ID across both
// record sets.
type EventUsage struct {
	EventID         string `json:"event_id"`
	TotalReferences int    `json:"total_references"`
	RuleCount       int    `json:"rule_count"`
	AlarmCount      int    `json:"alarm_count"`
	Description     string `json:"description,omitempty"`
	AuditPolicy     string `json:"audit_policy,omitempty"`
}

// Coverage is the full coverage picture for one rule/alarm pairing.
type Coverage struct {
	TotalRules            int             `json:"total_rules"`
	TotalAlarms           int             `json:"total_alarms"`
	RulesWithSignature    int             `json:"rules_with_signature"`
	RulesWithoutSignature int             `json:"rules_without_signature"`
	MatchedRules          int             `json:"matched_rules"`
	MatchedAlarms         int             `json:"matched_alarms"`
	RulesWithoutAlarms    int             `json:"rules_without_alarms"`
	AlarmsWithoutRules    int             `json:"alarms_without_rules"`
	RuleCoveragePct       float64         `json:"rule_coverage_percentage"`
	AlarmCoveragePct      float64         `json:"alarm_coverage_percentage"`
	Severity              SeverityBuckets `json:"severity_distribution"`
	TopEvents             []EventUsage    `json:"top_events,omitempty"`
}

// Analyze computes coverage from the record sets and their match result.
// Rule coverage is matched rules over rules that could match at all (those
// with a resolved signature); alarm coverage is matched alarms over all
// alarms.
func Analyze(rules []record.Rule, alarms []record.Alarm, m match.Result) Coverage {
	c := Coverage{
		TotalRules:    len(rules),
		TotalAlarms:   len(alarms),
		MatchedRules:  len(m.Matched),
		MatchedAlarms: len(alarms) - len(m.UnmatchedAlarms),
	}

	for _, rule := range rules {
		if rule.SigID.Found() {
			c.RulesWithSignature++
		}
		c.Severity.add(rule.Severity)
	}
	c.RulesWithoutSignature = c.TotalRules - c.RulesWithSignature
	c.RulesWithoutAlarms = c.RulesWithSignature - c.MatchedRules
	c.AlarmsWithoutRules = len(m.UnmatchedAlarms)

	if c.RulesWithSignature > 0 {
		c.RuleCoveragePct = round2(float64(c.MatchedRules) / float64(c.RulesWithSignature) * 100)
	}
	if c.TotalAlarms > 0 {
		c.AlarmCoveragePct = round2(float64(c.MatchedAlarms) / float64(c.TotalAlarms) * 100)
	}
	return c
}

func (b *SeverityBuckets) add(severity string) {
	n, err := strconv.Atoi(severity)
	switch {
	case err != nil:
		b.Low++
	case n >= criticalThreshold:
		b.Critical++
	case n >= highThreshold:
		b.High++
	case n >= mediumThreshold:
		b.Medium++
	default:
		b.Low++
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TopEvents aggregates event-ID references across both record sets through
// the signature mapping, most-referenced first (ties break on event ID).
// limit <= 0 returns everything.
func TopEvents(rules []record.Rule, alarms []record.Alarm, mapping *sigmap.Mapping, limit int) []EventUsage {
	if mapping == nil {
		return nil
	}

	ruleCounts := make(map[string]int)
	alarmCounts := make(map[string]int)
	for _, rule := range rules {
		for _, id := range mapping.RuleEventIDs(rule) {
			ruleCounts[id]++
		}
	}
	for _, alarm := range alarms {
		for _, id := range mapping.AlarmEventIDs(alarm) {
			alarmCounts[id]++
		}
	}

	seen := make(map[string]bool, len(ruleCounts)+len(alarmCounts))
	var usage []EventUsage
	for id := range ruleCounts {
		seen[id] = true
	}
	for id := range alarmCounts {
		seen[id] = true
	}
	for id := range seen {
		u := EventUsage{
			EventID:         id,
			RuleCount:       ruleCounts[id],
			AlarmCount:      alarmCounts[id],
			TotalReferences: ruleCounts[id] + alarmCounts[id],
		}
		if d, ok := mapping.EventDetail(id); ok {
			u.Description = d.Description
			u.AuditPolicy = d.AuditPolicy
		}
		usage = append(usage, u)
	}

	sort.Slice(usage, func(i, j int) bool {
		if usage[i].TotalReferences != usage[j].TotalReferences {
			return usage[i].TotalReferences > usage[j].TotalReferences
		}
		return usage[i].EventID < usage[j].EventID
	})
	if limit > 0 && len(usage) > limit {
		usage = usage[:limit]
	}
	return usage
}
