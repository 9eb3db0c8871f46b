// Package record defines the immutable value types sigbridge extracts from
// rule and alarm export documents, plus the flat field-map form exchanged
// with the persistence layer.
package record

import "strings"

// Rule is one correlation rule extracted from a rule export.
//
// Numeric-looking metadata (Revision, SID, ...) is carried verbatim as text:
// it is preserved on round-trip but never interpreted. Severity is likewise
// the raw source string; range checking belongs to the validator.
type Rule struct {
	ID          string // e.g. "47-6000114"
	NormID      string
	Revision    string
	SID         string
	Class       string
	Message     string
	Description string
	Origin      string
	Severity    string
	Type        string
	Action      string

	// Action bit fields, preserved verbatim.
	ActionInitial       string
	ActionDisallowed    string
	OtherBitsDefault    string
	OtherBitsDisallowed string

	// EmbeddedXML is the rule's embedded sub-document (the <text> CDATA
	// payload), verbatim. Needed for round-trip regeneration.
	EmbeddedXML string

	// SigID is the resolved signature identifier linking this rule to its
	// alarms. SourceNone means no strategy could resolve one.
	SigID Resolution
}

// Prefix returns the segment of the rule ID before the first '-'
// ("47-6000114" -> "47"). Returns the whole ID when no separator exists.
func (r Rule) Prefix() string {
	prefix, _, _ := strings.Cut(r.ID, "-")
	return prefix
}

// Alarm is one alarm extracted from an alarm export, or synthesized from a
// rule. A template merge produces a new Alarm; records are never edited in
// place.
type Alarm struct {
	Name       string
	MinVersion string

	// alarmData fields.
	Severity      string
	Note          string
	AssigneeID    string
	EscAssigneeID string
	DeviceFilters []DeviceFilter

	// conditionData fields.
	ConditionType string
	MatchField    string
	MatchValue    string // "<prefix>|<signature>" when present

	Actions []ActionEntry

	// RawXML is the complete alarm element as found in the source document.
	// Empty for synthesized alarms until they are rendered.
	RawXML string
}

// MatchSignature returns the signature component of the match value
// ("47|6000114" -> "6000114"). Returns "" when the match value has no
// separator or no signature part.
func (a Alarm) MatchSignature() string {
	_, sig, ok := strings.Cut(a.MatchValue, "|")
	if !ok {
		return ""
	}
	return sig
}

// DeviceFilter scopes an alarm to a set of devices.
type DeviceFilter struct {
	Mask        string
	Constraints []Constraint
}

// Constraint is one device-filter constraint.
type Constraint struct {
	Type  string
	Value string
}

// ActionEntry is one configured alarm action.
type ActionEntry struct {
	Type       string
	Process    string
	Attributes []ActionAttribute
}

// ActionAttribute is a named free-form action setting.
type ActionAttribute struct {
	Name  string
	Value string
}
