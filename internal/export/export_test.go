package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/xmlstream"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

func TestRules_RegeneratesParseableDocument(t *testing.T) {
	rule := record.Rule{
		ID:          "47-6000114",
		Message:     "Suspicious Logon",
		Description: "failed logons",
		Severity:    "75",
		EmbeddedXML: `<ruleset id="47-0"><property><n>sigid</n><value>0</value></property></ruleset>`,
		SigID:       record.Resolution{SigID: "6000114", Source: record.SourceProperty},
	}

	doc := Rules([]map[string]string{rule.Fields()})

	root, err := xmltree.ParseString(doc)
	require.NoError(t, err)
	assert.Equal(t, "nitro_policy", root.Name)
	esm, _ := root.Attr("esm")
	assert.Equal(t, "6F26:4000", esm)

	container := root.Find("rules")
	require.NotNil(t, container)
	count, _ := container.Attr("count")
	assert.Equal(t, "1", count)

	el := container.Find("rule")
	require.NotNil(t, el)
	assert.Equal(t, "47-6000114", el.TextOf("id"))
	assert.Equal(t, "Suspicious Logon", el.TextOf("message"))
	assert.Equal(t, "75", el.TextOf("severity"))

	// Verbatim metadata defaults.
	assert.Equal(t, "0", el.TextOf("sid"))
	assert.Equal(t, "255", el.TextOf("action_initial"))
	assert.Equal(t, "4", el.TextOf("other_bits_default"))
}

func TestRules_SyncsEmbeddedIdentifiers(t *testing.T) {
	rule := record.Rule{
		ID:          "47-6000114",
		Message:     "m",
		EmbeddedXML: `<ruleset id="47-0"><property><n>sigid</n><value>0</value></property></ruleset>`,
		SigID:       record.Resolution{SigID: "6000114", Source: record.SourceProperty},
	}

	doc := Rules([]map[string]string{rule.Fields()})

	root, err := xmltree.ParseString(doc)
	require.NoError(t, err)
	embedded := root.Find("rules", "rule").TextOf("text")

	inner, err := xmltree.ParseString(embedded)
	require.NoError(t, err)
	id, _ := inner.Attr("id")
	assert.Equal(t, "47-6000114", id, "embedded root id must follow the outer rule id")

	prop := inner.Find("property")
	require.NotNil(t, prop)
	assert.Equal(t, "6000114", prop.TextOf("value"), "sigid property must follow the resolved signature")
}

func TestRules_EmbeddedDocumentTravelsAsCDATA(t *testing.T) {
	rule := record.Rule{
		ID:          "47-1",
		EmbeddedXML: `<ruleset id="47-1"/>`,
		SigID:       record.Resolution{SigID: "1", Source: record.SourceRuleID},
	}

	doc := Rules([]map[string]string{rule.Fields()})
	assert.Contains(t, doc, "<![CDATA[")

	// And the regenerated document streams back through the rule reader.
	rules, err := xmlstream.ReadRules(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "47-1", rules[0].ID)
	assert.Equal(t, "1", rules[0].SigID.SigID)
}

func TestRules_MissingEmbeddedGetsPlaceholder(t *testing.T) {
	rule := record.Rule{ID: "47-2", Message: "No Body"}

	doc := Rules([]map[string]string{rule.Fields()})

	root, err := xmltree.ParseString(doc)
	require.NoError(t, err)
	embedded := root.Find("rules", "rule").TextOf("text")

	inner, err := xmltree.ParseString(embedded)
	require.NoError(t, err)
	assert.Equal(t, "ruleset", inner.Name)
	id, _ := inner.Attr("id")
	assert.Equal(t, "47-2", id)
	name, _ := inner.Attr("name")
	assert.Equal(t, "No Body", name)
}

func TestRules_UnparseableEmbeddedPassesThrough(t *testing.T) {
	rule := record.Rule{
		ID:          "47-3",
		EmbeddedXML: `<ruleset id="47-3"><property>`,
		SigID:       record.Resolution{SigID: "3", Source: record.SourceRuleID},
	}

	doc := Rules([]map[string]string{rule.Fields()})
	assert.Contains(t, doc, `<![CDATA[<ruleset id="47-3"><property>]]>`)
}

func TestAlarms_RawDocumentIsAuthoritative(t *testing.T) {
	alarm := record.Alarm{
		Name:       "different name",
		Severity:   "99",
		MatchValue: "47|999",
		RawXML: `<alarm name="Original" minVersion="11.0.0">
  <alarmData>
    <severity>50</severity>
  </alarmData>
  <conditionData>
    <matchField>DSIDSigID</matchField>
    <matchValue>47|111</matchValue>
  </conditionData>
</alarm>`,
	}

	doc := Alarms([]map[string]string{alarm.Fields()})

	root, err := xmltree.ParseString(doc)
	require.NoError(t, err)
	el := root.Find("alarm")
	require.NotNil(t, el)

	name, _ := el.Attr("name")
	assert.Equal(t, "Original", name)
	assert.Equal(t, "50", el.TextOf("alarmData", "severity"))
	assert.Equal(t, "47|111", el.TextOf("conditionData", "matchValue"))
}

func TestAlarms_ColumnsFillMissingFields(t *testing.T) {
	alarm := record.Alarm{
		Name:          "Synth Only",
		MinVersion:    "11.6.14",
		Severity:      "80",
		Note:          "from columns",
		AssigneeID:    "655372",
		ConditionType: "14",
		MatchField:    "DSIDSigID",
		MatchValue:    "47|6000114",
	}

	doc := Alarms([]map[string]string{alarm.Fields()})

	root, err := xmltree.ParseString(doc)
	require.NoError(t, err)
	el := root.Find("alarm")
	require.NotNil(t, el)

	name, _ := el.Attr("name")
	assert.Equal(t, "Synth Only", name)
	minVersion, _ := el.Attr("minVersion")
	assert.Equal(t, "11.6.14", minVersion)
	assert.Equal(t, "80", el.TextOf("alarmData", "severity"))
	assert.Equal(t, "from columns", el.TextOf("alarmData", "note"))
	assert.Equal(t, "47|6000114", el.TextOf("conditionData", "matchValue"))
	assert.Equal(t, "14", el.TextOf("conditionData", "conditionType"))
}

func TestAlarms_UnparseableRawFallsBackToColumns(t *testing.T) {
	alarm := record.Alarm{
		Name:   "Broken Raw",
		RawXML: `<alarm name="x"`,
	}

	doc := Alarms([]map[string]string{alarm.Fields()})

	root, err := xmltree.ParseString(doc)
	require.NoError(t, err)
	el := root.Find("alarm")
	require.NotNil(t, el)
	name, _ := el.Attr("name")
	assert.Equal(t, "Broken Raw", name)
}

func TestAlarms_RoundTripsThroughAlarmReader(t *testing.T) {
	alarm := record.Alarm{
		Name:          "Round Trip",
		MinVersion:    "11.6.14",
		Severity:      "60",
		MatchField:    "DSIDSigID",
		MatchValue:    "47|123",
		ConditionType: "14",
	}

	doc := Alarms([]map[string]string{alarm.Fields()})

	alarms, err := xmlstream.ReadAlarms(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "Round Trip", alarms[0].Name)
	assert.Equal(t, "47|123", alarms[0].MatchValue)
}
