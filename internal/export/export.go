// Package export regenerates rule and alarm documents from stored field
// maps, producing a single well-formed document string per record set.
package export

import (
	"strconv"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// Fixed policy-root attributes carried on every regenerated rule export.
// Legacy importers check these header fields before accepting a document.
var policyAttrs = []xmltree.Attr{
	{Name: "esm", Value: "6F26:4000"},
	{Name: "time", Value: "06/05/2025 16:48:08"},
	{Name: "user", Value: "NGCP"},
	{Name: "build", Value: "11.6.14 20250324053645"},
	{Name: "model", Value: "ETM-VM4"},
	{Name: "version", Value: "11006014"},
}

// Defaults for verbatim metadata fields a stored rule may lack.
const (
	defaultSID                 = "0"
	defaultClass               = "0"
	defaultActionInitial       = "255"
	defaultActionDisallowed    = "0"
	defaultOtherBitsDefault    = "4"
	defaultOtherBitsDisallowed = "0"
)

// Rules regenerates a rule export document from stored field maps. The
// embedded sub-document travels as CDATA, with its root id attribute and
// sigid property re-synced to the outer record so a stored edit cannot leave
// the two halves disagreeing.
func Rules(fields []map[string]string) string {
	root := &xmltree.Node{Name: "nitro_policy", Attrs: policyAttrs}
	container := &xmltree.Node{Name: "rules"}
	container.SetAttr("count", strconv.Itoa(len(fields)))
	root.Children = append(root.Children, container)

	for _, m := range fields {
		rule := record.RuleFromFields(m)
		container.Children = append(container.Children, ruleElement(rule))
	}
	return root.Document()
}

func ruleElement(rule record.Rule) *xmltree.Node {
	el := &xmltree.Node{Name: "rule"}
	text := func(name, value string) {
		el.Children = append(el.Children, &xmltree.Node{Name: name, Text: value})
	}
	orDefault := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}

	text("id", rule.ID)
	text("normid", rule.NormID)
	if rule.Revision != "" {
		text("revision", rule.Revision)
	}
	text("sid", orDefault(rule.SID, defaultSID))
	text("class", orDefault(rule.Class, defaultClass))
	text("message", rule.Message)
	text("description", rule.Description)
	if rule.Origin != "" {
		text("origin", rule.Origin)
	}
	if rule.Severity != "" {
		text("severity", rule.Severity)
	}
	if rule.Type != "" {
		text("type", rule.Type)
	}
	if rule.Action != "" {
		text("action", rule.Action)
	}
	text("action_initial", orDefault(rule.ActionInitial, defaultActionInitial))
	text("action_disallowed", orDefault(rule.ActionDisallowed, defaultActionDisallowed))
	text("other_bits_default", orDefault(rule.OtherBitsDefault, defaultOtherBitsDefault))
	text("other_bits_disallowed", orDefault(rule.OtherBitsDisallowed, defaultOtherBitsDisallowed))

	el.Children = append(el.Children, &xmltree.Node{
		Name:  "text",
		Text:  embeddedDocument(rule),
		CDATA: true,
	})
	return el
}

// embeddedDocument returns the rule's embedded sub-document with the outer
// identifier and the sigid property synced to the record. An unparseable
// sub-document is passed through verbatim; a missing one gets a minimal
// placeholder ruleset.
func embeddedDocument(rule record.Rule) string {
	if rule.EmbeddedXML == "" {
		placeholder := &xmltree.Node{Name: "ruleset"}
		placeholder.SetAttr("id", rule.ID)
		placeholder.SetAttr("name", rule.Message)
		return placeholder.String()
	}
	if !rule.SigID.Found() {
		return rule.EmbeddedXML
	}

	inner, err := xmltree.ParseString(rule.EmbeddedXML)
	if err != nil {
		return rule.EmbeddedXML
	}
	if _, ok := inner.Attr("id"); ok && rule.ID != "" {
		inner.SetAttr("id", rule.ID)
	}
	for _, prop := range inner.Descendants("property") {
		if record.PropertyName(prop) == "sigid" {
			if value := prop.Find("value"); value != nil {
				value.Text = rule.SigID.SigID
			}
			break
		}
	}
	return inner.String()
}

// Alarms regenerates an alarm export document from stored field maps. A
// record's raw document text is authoritative when it parses; stored columns
// fill in only what the raw copy is missing.
func Alarms(fields []map[string]string) string {
	root := &xmltree.Node{Name: "alarms"}
	for _, m := range fields {
		alarm := record.AlarmFromFields(m)
		root.Children = append(root.Children, alarmElement(alarm))
	}
	return root.Document()
}

func alarmElement(alarm record.Alarm) *xmltree.Node {
	var el *xmltree.Node
	if alarm.RawXML != "" {
		if parsed, err := xmltree.ParseString(alarm.RawXML); err == nil {
			el = parsed
		}
	}
	if el == nil {
		el = &xmltree.Node{Name: "alarm"}
	}

	if v, ok := el.Attr("name"); !ok || v == "" {
		if alarm.Name != "" {
			el.SetAttr("name", alarm.Name)
		}
	}
	if alarm.MinVersion != "" {
		el.SetAttr("minVersion", alarm.MinVersion)
	}

	data := el.Find("alarmData")
	if data == nil {
		data = &xmltree.Node{Name: "alarmData"}
		el.Children = append(el.Children, data)
	}
	fillMissing(data, "severity", alarm.Severity)
	fillMissing(data, "note", alarm.Note)
	fillMissing(data, "assignee", alarm.AssigneeID)
	fillMissing(data, "escAssignee", alarm.EscAssigneeID)

	cond := el.Find("conditionData")
	if cond == nil {
		cond = &xmltree.Node{Name: "conditionData"}
		el.Children = append(el.Children, cond)
	}
	fillMissing(cond, "matchField", alarm.MatchField)
	fillMissing(cond, "matchValue", alarm.MatchValue)
	fillMissing(cond, "conditionType", alarm.ConditionType)

	return el
}

// fillMissing adds a text child only when the parent has no such element
// and the value is non-empty.
func fillMissing(parent *xmltree.Node, name, value string) {
	if value == "" || parent.Find(name) != nil {
		return
	}
	parent.Children = append(parent.Children, &xmltree.Node{Name: name, Text: value})
}
