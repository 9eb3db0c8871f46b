// Package validate performs structural validation of rule and alarm export
// documents beyond well-formedness. It streams the source in an independent
// pass (it never reuses reader output, so malformed-but-parseable documents
// are still fully checked) and accumulates findings instead of aborting:
// a markup syntax fault is the only fatal condition.
package validate

import (
	"fmt"
	"strconv"
)

// Finding codes. V1xx cover rule documents, V2xx alarm documents.
const (
	CodeMissingElement   = "V100" // required child element absent
	CodeEmptyElement     = "V101" // required child element present but empty
	CodeSeverityRange    = "V102" // severity outside [0, 100]
	CodeSeverityNotNum   = "V103" // severity not numeric
	CodeEmbeddedSyntax   = "V110" // embedded sub-document not well-formed
	CodeEmbeddedRoot     = "V111" // embedded root element is not <ruleset>
	CodeSigIDEmpty       = "V112" // sigid property declared with empty value
	CodeSigIDAbsent      = "V113" // no sigid property in embedded document
	CodeMissingAttribute = "V200" // required attribute absent
	CodeMatchValueFormat = "V210" // match value not <digits>|<digits>
	CodeNoActions        = "V211" // actions element has no actionData entries
	CodeNoElements       = "V300" // document scanned but held no elements
)

// Finding is one validation error or warning, with enough positional
// context (1-based element index, offending field) to locate the node.
type Finding struct {
	Code    string `json:"code"`
	Index   int    `json:"index,omitempty"` // 1-based rule/alarm position
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (f Finding) Error() string {
	if f.Index > 0 {
		return fmt.Sprintf("[%s] element %d: %s", f.Code, f.Index, f.Message)
	}
	return fmt.Sprintf("[%s] %s", f.Code, f.Message)
}

// Result accumulates validation findings for one document. It is plain
// data: consumers branch on Valid and render the findings, nothing raises.
type Result struct {
	Scanned  int       `json:"scanned"`
	Errors   []Finding `json:"errors,omitempty"`
	Warnings []Finding `json:"warnings,omitempty"`
}

// Valid reports whether the document produced no errors. Warnings do not
// affect validity.
func (r *Result) Valid() bool { return len(r.Errors) == 0 }

func (r *Result) addError(f Finding)   { r.Errors = append(r.Errors, f) }
func (r *Result) addWarning(f Finding) { r.Warnings = append(r.Warnings, f) }

// checkSeverity applies the shared severity rule: when present, the value
// must parse as an integer in [0, 100]. Violations are errors, not faults.
func (r *Result) checkSeverity(index int, raw string) {
	if raw == "" {
		return
	}
	severity, err := strconv.Atoi(raw)
	if err != nil {
		r.addError(Finding{
			Code:    CodeSeverityNotNum,
			Index:   index,
			Field:   "severity",
			Message: fmt.Sprintf("severity must be a number, got %q", raw),
		})
		return
	}
	if severity < 0 || severity > 100 {
		r.addError(Finding{
			Code:    CodeSeverityRange,
			Index:   index,
			Field:   "severity",
			Message: fmt.Sprintf("severity must be between 0 and 100, got %d", severity),
		})
	}
}
