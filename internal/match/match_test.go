package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/sigbridge/internal/record"
)

func ruleWithSig(id, sig string) record.Rule {
	r := record.Rule{ID: id}
	if sig != "" {
		r.SigID = record.Resolution{SigID: sig, Source: record.SourceRuleID}
	}
	return r
}

func alarmWithMatch(name, matchValue string) record.Alarm {
	return record.Alarm{Name: name, MatchValue: matchValue}
}

func TestMatch_SinglePair(t *testing.T) {
	result := Match(
		[]record.Rule{ruleWithSig("47-12345", "12345")},
		[]record.Alarm{alarmWithMatch("a", "47|12345")},
	)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "47-12345", result.Matched[0].Rule.ID)
	assert.Equal(t, "a", result.Matched[0].Alarm.Name)
	assert.Empty(t, result.UnmatchedRules)
	assert.Empty(t, result.UnmatchedAlarms)
}

func TestMatch_ExtraAlarmIsUnmatched(t *testing.T) {
	result := Match(
		[]record.Rule{ruleWithSig("47-12345", "12345")},
		[]record.Alarm{
			alarmWithMatch("a", "47|12345"),
			alarmWithMatch("b", "47|99999"),
		},
	)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "a", result.Matched[0].Alarm.Name)
	require.Len(t, result.UnmatchedAlarms, 1)
	assert.Equal(t, "b", result.UnmatchedAlarms[0].Name)
}

func TestMatch_UnmatchedReasonsAreDistinguishable(t *testing.T) {
	result := Match(
		[]record.Rule{
			ruleWithSig("47-1", ""),      // no resolvable signature
			ruleWithSig("47-2", "22222"), // signature, but no alarm
		},
		nil,
	)

	require.Len(t, result.UnmatchedRules, 2)
	assert.Equal(t, ReasonNoSignature, result.UnmatchedRules[0].Reason)
	assert.Equal(t, ReasonNoAlarm, result.UnmatchedRules[1].Reason)
}

func TestMatch_DuplicateSignatureLastWriterWins(t *testing.T) {
	result := Match(
		[]record.Rule{ruleWithSig("47-1", "111")},
		[]record.Alarm{
			alarmWithMatch("old", "47|111"),
			alarmWithMatch("new", "47|111"),
		},
	)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "new", result.Matched[0].Alarm.Name)

	// The shadowed alarm was never referenced by any hit.
	require.Len(t, result.UnmatchedAlarms, 1)
	assert.Equal(t, "old", result.UnmatchedAlarms[0].Name)
}

func TestMatch_AlarmWithoutSignatureComponent(t *testing.T) {
	result := Match(
		[]record.Rule{ruleWithSig("47-1", "111")},
		[]record.Alarm{alarmWithMatch("legacy", "sig-111")},
	)

	require.Len(t, result.UnmatchedRules, 1)
	assert.Equal(t, ReasonNoAlarm, result.UnmatchedRules[0].Reason)
	require.Len(t, result.UnmatchedAlarms, 1)
	assert.Equal(t, "legacy", result.UnmatchedAlarms[0].Name)
}

func TestMatch_EmptyInputs(t *testing.T) {
	result := Match(nil, nil)
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.UnmatchedRules)
	assert.Empty(t, result.UnmatchedAlarms)
}

func TestMatch_PreservesInputOrder(t *testing.T) {
	rules := []record.Rule{
		ruleWithSig("47-3", "333"),
		ruleWithSig("47-1", "111"),
		ruleWithSig("47-2", "222"),
	}
	alarms := []record.Alarm{
		alarmWithMatch("c", "47|333"),
		alarmWithMatch("a", "47|111"),
		alarmWithMatch("b", "47|222"),
	}

	result := Match(rules, alarms)
	require.Len(t, result.Matched, 3)
	assert.Equal(t, "47-3", result.Matched[0].Rule.ID)
	assert.Equal(t, "47-1", result.Matched[1].Rule.ID)
	assert.Equal(t, "47-2", result.Matched[2].Rule.ID)
}
