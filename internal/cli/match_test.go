package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_TextOutput(t *testing.T) {
	rulePath := writeFixture(t, "rules.xml", cliRuleDoc)
	alarmPath := writeFixture(t, "alarms.xml", cliAlarmDoc)

	out, err := execute(t, "match", rulePath, alarmPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 matched, 0 unmatched rule(s), 0 unmatched alarm(s)")
	assert.Contains(t, out, "match: 47-12345 -> Test Alarm (sig 12345)")
}

func TestMatch_JSONOutput(t *testing.T) {
	rulePath := writeFixture(t, "rules.xml", cliRuleDoc)
	alarmDoc := `<alarms>
	  <alarm name="Test Alarm"><conditionData><matchValue>47|12345</matchValue></conditionData></alarm>
	  <alarm name="Orphan"><conditionData><matchValue>47|99999</matchValue></conditionData></alarm>
	</alarms>`
	alarmPath := writeFixture(t, "alarms.xml", alarmDoc)

	out, err := execute(t, "--format", "json", "match", rulePath, alarmPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, merr := json.Marshal(resp.Data)
	require.NoError(t, merr)
	var output MatchOutput
	require.NoError(t, json.Unmarshal(data, &output))
	require.Len(t, output.Matched, 1)
	assert.Equal(t, "47-12345", output.Matched[0].RuleID)
	assert.Equal(t, []string{"Orphan"}, output.UnmatchedAlarms)
	assert.Empty(t, output.UnmatchedRules)
}

func TestMatch_UnmatchedReasons(t *testing.T) {
	doc := `<nitro_policy><rules>
	  <rule><id>nodigits</id><message>m</message><severity>10</severity>
	    <text><![CDATA[<ruleset id="none"/>]]></text></rule>
	  <rule><id>47-2</id><message>m</message><severity>10</severity>
	    <text><![CDATA[<ruleset id="47-2"/>]]></text></rule>
	</rules></nitro_policy>`
	rulePath := writeFixture(t, "rules.xml", doc)
	alarmPath := writeFixture(t, "alarms.xml", `<alarms><alarm name="x"><conditionData><matchValue>47|999</matchValue></conditionData></alarm></alarms>`)

	out, err := execute(t, "match", rulePath, alarmPath)
	require.NoError(t, err)
	assert.Contains(t, out, "unmatched rule: nodigits (no_signature)")
	assert.Contains(t, out, "unmatched rule: 47-2 (no_alarm)")
	assert.Contains(t, out, "unmatched alarm: x")
}

func TestMatch_ParseFaultPropagates(t *testing.T) {
	rulePath := writeFixture(t, "rules.xml", cliRuleDoc)
	badAlarmPath := writeFixture(t, "bad.xml", `<alarms><alarm`)

	_, err := execute(t, "match", rulePath, badAlarmPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
