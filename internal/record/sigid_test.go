package record

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSigID_RuleIDSuffix(t *testing.T) {
	testCases := []struct {
		ruleID string
		want   string
	}{
		{"47-6000114", "6000114"},
		{"43-263047320", "263047320"},
		{"12345", "12345"},
		{"ips-99", "99"},
	}

	for _, tc := range testCases {
		t.Run(tc.ruleID, func(t *testing.T) {
			res := ExtractSigID(tc.ruleID, "")
			assert.True(t, res.Found())
			assert.Equal(t, tc.want, res.SigID)
			assert.Equal(t, SourceRuleID, res.Source)
		})
	}
}

func TestExtractSigID_RuleIDTakesPrecedenceOverEmbedded(t *testing.T) {
	// Matching downstream depends on this ordering: the rule's own
	// identifier wins even when the embedded document disagrees.
	embedded := `<ruleset id="43-111"><property><name>sigid</name><value>222</value></property></ruleset>`

	res := ExtractSigID("47-6000114", embedded)
	assert.Equal(t, "6000114", res.SigID)
	assert.Equal(t, SourceRuleID, res.Source)
}

func TestExtractSigID_PropertyFallback(t *testing.T) {
	for _, tag := range []string{"n", "name"} {
		t.Run(tag, func(t *testing.T) {
			embedded := fmt.Sprintf(
				`<ruleset><property><%s>sigid</%s><value>6000200</value></property></ruleset>`,
				tag, tag)

			res := ExtractSigID("no-digits-here-", embedded)
			assert.Equal(t, "6000200", res.SigID)
			assert.Equal(t, SourceProperty, res.Source)
		})
	}
}

func TestExtractSigID_RulesetIDFallback(t *testing.T) {
	embedded := `<ruleset id="47-6000300"><property><name>other</name><value>x</value></property></ruleset>`

	res := ExtractSigID("", embedded)
	assert.Equal(t, "6000300", res.SigID)
	assert.Equal(t, SourceRulesetID, res.Source)
}

func TestExtractSigID_ElementSynonymFallback(t *testing.T) {
	for _, tag := range []string{"sig_id", "sigID", "sigId"} {
		t.Run(tag, func(t *testing.T) {
			embedded := fmt.Sprintf(`<ruleset><meta><%s>6000400</%s></meta></ruleset>`, tag, tag)

			res := ExtractSigID("", embedded)
			assert.Equal(t, "6000400", res.SigID)
			assert.Equal(t, SourceElement, res.Source)
		})
	}
}

func TestExtractSigID_NotFoundIsNormalOutcome(t *testing.T) {
	testCases := []struct {
		name     string
		ruleID   string
		embedded string
	}{
		{"all empty", "", ""},
		{"no digits anywhere", "alpha-beta", `<ruleset id="gamma"/>`},
		{"malformed embedded document", "", `<ruleset><property>`},
		{"sigid property with empty value", "", `<ruleset><property><name>sigid</name><value></value></property></ruleset>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := ExtractSigID(tc.ruleID, tc.embedded)
			assert.False(t, res.Found())
			assert.Equal(t, Resolution{}, res)
		})
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "47", Rule{ID: "47-6000114"}.Prefix())
	assert.Equal(t, "12345", Rule{ID: "12345"}.Prefix())
	assert.Equal(t, "", Rule{}.Prefix())
}

func TestMatchSignature(t *testing.T) {
	assert.Equal(t, "6000114", Alarm{MatchValue: "47|6000114"}.MatchSignature())
	assert.Equal(t, "", Alarm{MatchValue: "6000114"}.MatchSignature())
	assert.Equal(t, "", Alarm{}.MatchSignature())
}
