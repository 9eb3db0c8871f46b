package xmlstream

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// RuleReader streams Rule records out of a rule export document.
//
// The sequence is lazy, finite, and non-restartable: each Next call reads
// until one <rule> element closes, converts it, and discards its subtree.
// Resident memory is bounded by a single rule plus its embedded sub-document
// regardless of document size. Callers needing a second pass (for example
// independent validation) must re-open the source.
type RuleReader struct {
	d            *xml.Decoder
	rootVersion  string
	sawRoot      bool
	sawContainer bool
	count        int
	err          error
}

// NewRuleReader returns a reader over an open rule document stream.
func NewRuleReader(r io.Reader) *RuleReader {
	return &RuleReader{d: xmltree.NewDecoder(r)}
}

// Version returns the document's declared version (root version attribute,
// falling back to the first token of the build attribute). Populated once
// the root element has been read, i.e. after the first Next call.
func (r *RuleReader) Version() string { return r.rootVersion }

// Count returns the number of rules emitted so far.
func (r *RuleReader) Count() int { return r.count }

// rawRule mirrors one <rule> element. Missing children decode to "" and
// degrade just that field, never the record or the sequence.
type rawRule struct {
	ID                  string `xml:"id"`
	NormID              string `xml:"normid"`
	Revision            string `xml:"revision"`
	SID                 string `xml:"sid"`
	Class               string `xml:"class"`
	Message             string `xml:"message"`
	Description         string `xml:"description"`
	Origin              string `xml:"origin"`
	Severity            string `xml:"severity"`
	Type                string `xml:"type"`
	Action              string `xml:"action"`
	ActionInitial       string `xml:"action_initial"`
	ActionDisallowed    string `xml:"action_disallowed"`
	OtherBitsDefault    string `xml:"other_bits_default"`
	OtherBitsDisallowed string `xml:"other_bits_disallowed"`
	Text                string `xml:"text"`
}

// Next returns the next Rule record, io.EOF at the end of the document, or
// a *ParseError on a syntax fault. After an error the sequence is dead.
func (r *RuleReader) Next() (*record.Rule, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		tok, err := r.d.Token()
		if err == io.EOF {
			r.err = io.EOF
			return nil, io.EOF
		}
		if err != nil {
			r.err = syntaxError("rule document", err)
			return nil, r.err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !r.sawRoot {
			r.sawRoot = true
			r.rootVersion = rootVersion(start)
			continue
		}
		switch start.Name.Local {
		case "rules":
			r.sawContainer = true
		case "rule":
			var raw rawRule
			if err := r.d.DecodeElement(&raw, &start); err != nil {
				r.err = syntaxError("rule element", err)
				return nil, r.err
			}
			r.count++
			rule := raw.toRecord()
			return &rule, nil
		}
	}
}

// SawContainer reports whether a <rules> container was encountered.
// Meaningful once the sequence has ended.
func (r *RuleReader) SawContainer() bool { return r.sawContainer }

func (raw rawRule) toRecord() record.Rule {
	embedded := raw.Text
	return record.Rule{
		ID:                  strings.TrimSpace(raw.ID),
		NormID:              strings.TrimSpace(raw.NormID),
		Revision:            strings.TrimSpace(raw.Revision),
		SID:                 strings.TrimSpace(raw.SID),
		Class:               strings.TrimSpace(raw.Class),
		Message:             strings.TrimSpace(raw.Message),
		Description:         strings.TrimSpace(raw.Description),
		Origin:              strings.TrimSpace(raw.Origin),
		Severity:            strings.TrimSpace(raw.Severity),
		Type:                strings.TrimSpace(raw.Type),
		Action:              strings.TrimSpace(raw.Action),
		ActionInitial:       strings.TrimSpace(raw.ActionInitial),
		ActionDisallowed:    strings.TrimSpace(raw.ActionDisallowed),
		OtherBitsDefault:    strings.TrimSpace(raw.OtherBitsDefault),
		OtherBitsDisallowed: strings.TrimSpace(raw.OtherBitsDisallowed),
		EmbeddedXML:         embedded,
		SigID:               record.ExtractSigID(strings.TrimSpace(raw.ID), embedded),
	}
}

// rootVersion picks the document version off the root element.
func rootVersion(start xml.StartElement) string {
	var version, build string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "version":
			version = a.Value
		case "build":
			build = a.Value
		}
	}
	if version != "" {
		return version
	}
	// Build strings look like "11.6.14 20250324053645"; keep the version part.
	if fields := strings.Fields(build); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// drainRules consumes the whole sequence and applies the document-level
// failure variants: MISSING_CONTAINER and EMPTY_DOCUMENT.
func drainRules(reader *RuleReader) ([]record.Rule, error) {
	var rules []record.Rule
	for {
		rule, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if !reader.SawContainer() {
		return nil, &ParseError{Code: ErrCodeMissingContainer, Message: "document has no <rules> container"}
	}
	if len(rules) == 0 {
		return nil, &ParseError{Code: ErrCodeEmptyDocument, Message: "no rules found in document"}
	}
	return rules, nil
}

// ReadRules drains a rule document into a slice. Returns a *ParseError with
// ErrCodeMissingContainer when the document has no <rules> container, and
// ErrCodeEmptyDocument when the container holds no rules.
func ReadRules(r io.Reader) ([]record.Rule, error) {
	return drainRules(NewRuleReader(r))
}

// ReadRulesFile is ReadRules over a file path, also returning the document's
// declared version.
func ReadRulesFile(path string) ([]record.Rule, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	reader := NewRuleReader(f)
	rules, err := drainRules(reader)
	if err != nil {
		return nil, "", err
	}
	return rules, reader.Version(), nil
}

// AlarmReader streams Alarm records out of an alarm export document with the
// same memory discipline as RuleReader.
type AlarmReader struct {
	d     *xml.Decoder
	count int
	err   error
}

// NewAlarmReader returns a reader over an open alarm document stream.
func NewAlarmReader(r io.Reader) *AlarmReader {
	return &AlarmReader{d: xmltree.NewDecoder(r)}
}

// Count returns the number of alarms emitted so far.
func (r *AlarmReader) Count() int { return r.count }

// Next returns the next Alarm record, io.EOF at the end of the document, or
// a *ParseError on a syntax fault.
func (r *AlarmReader) Next() (*record.Alarm, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		tok, err := r.d.Token()
		if err == io.EOF {
			r.err = io.EOF
			return nil, io.EOF
		}
		if err != nil {
			r.err = syntaxError("alarm document", err)
			return nil, r.err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "alarm" {
			continue
		}
		node, err := xmltree.ParseElement(r.d, &start)
		if err != nil {
			r.err = syntaxError("alarm element", err)
			return nil, r.err
		}
		r.count++
		alarm := AlarmFromNode(node)
		return &alarm, nil
	}
}

// ReadAlarms drains an alarm document into a slice. A well-formed document
// with no alarms is the ErrCodeEmptyDocument outcome.
func ReadAlarms(r io.Reader) ([]record.Alarm, error) {
	reader := NewAlarmReader(r)
	var alarms []record.Alarm
	for {
		alarm, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, *alarm)
	}
	if len(alarms) == 0 {
		return nil, &ParseError{Code: ErrCodeEmptyDocument, Message: "no alarms found in document"}
	}
	return alarms, nil
}

// ReadAlarmsFile is ReadAlarms over a file path.
func ReadAlarmsFile(path string) ([]record.Alarm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAlarms(f)
}

// AlarmFromNode converts a parsed <alarm> element into an Alarm record.
// Missing children degrade to empty fields.
func AlarmFromNode(node *xmltree.Node) record.Alarm {
	alarm := record.Alarm{RawXML: node.String()}
	alarm.Name, _ = node.Attr("name")
	alarm.MinVersion, _ = node.Attr("minVersion")

	if data := node.Find("alarmData"); data != nil {
		alarm.Severity = data.TextOf("severity")
		alarm.Note = data.TextOf("note")
		alarm.AssigneeID = data.TextOf("assignee")
		alarm.EscAssigneeID = data.TextOf("escAssignee")

		if deviceIDs := data.Find("deviceIDs"); deviceIDs != nil {
			for _, df := range deviceIDs.FindAll("deviceFilter") {
				filter := record.DeviceFilter{}
				filter.Mask, _ = df.Attr("mask")
				for _, cf := range df.FindAll("constraintFilter") {
					c := record.Constraint{}
					c.Type, _ = cf.Attr("type")
					c.Value, _ = cf.Attr("value")
					filter.Constraints = append(filter.Constraints, c)
				}
				alarm.DeviceFilters = append(alarm.DeviceFilters, filter)
			}
		}
	}

	if cond := node.Find("conditionData"); cond != nil {
		alarm.ConditionType = cond.TextOf("conditionType")
		alarm.MatchField = cond.TextOf("matchField")
		alarm.MatchValue = cond.TextOf("matchValue")
	}

	if actions := node.Find("actions"); actions != nil {
		for _, ad := range actions.FindAll("actionData") {
			entry := record.ActionEntry{
				Type:    ad.TextOf("actionType"),
				Process: ad.TextOf("actionProcess"),
			}
			if attrs := ad.Find("actionAttributes"); attrs != nil {
				for _, attr := range attrs.FindAll("attribute") {
					a := record.ActionAttribute{Value: strings.TrimSpace(attr.Text)}
					a.Name, _ = attr.Attr("name")
					entry.Attributes = append(entry.Attributes, a)
				}
			}
			alarm.Actions = append(alarm.Actions, entry)
		}
	}

	return alarm
}
