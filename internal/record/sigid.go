package record

import (
	"regexp"
	"strings"

	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// Source identifies which extraction strategy resolved a signature ID.
type Source string

const (
	// SourceNone means no strategy succeeded. This is an expected outcome,
	// not an error: callers decide what an unresolved signature means.
	SourceNone Source = ""

	// SourceRuleID: trailing digit run of the rule's own identifier.
	SourceRuleID Source = "rule_id"

	// SourceProperty: a sigid property inside the embedded sub-document.
	SourceProperty Source = "property"

	// SourceRulesetID: trailing digit run of the embedded root's id attribute.
	SourceRulesetID Source = "ruleset_id"

	// SourceElement: a sig_id/sigID/sigId element in the sub-document.
	SourceElement Source = "element"
)

// Resolution is the outcome of signature extraction: a value plus the
// strategy that produced it. The zero value means "not found".
type Resolution struct {
	SigID  string
	Source Source
}

// Found reports whether a signature was resolved.
func (r Resolution) Found() bool { return r.Source != SourceNone }

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// propertyNameTags are the two historical spellings of the property-name
// element inside embedded rulesets.
var propertyNameTags = []string{"n", "name"}

// sigElementNames are element names treated as signature-id synonyms.
var sigElementNames = []string{"sig_id", "sigID", "sigId"}

// ExtractSigID resolves a rule's signature identifier. Strategies are tried
// in order; the first hit wins:
//
//  1. trailing digit run of ruleID ("47-6000114" -> "6000114")
//  2. a property named "sigid" in the embedded sub-document
//  3. trailing digit run of the embedded root's own id attribute
//  4. any sig_id/sigID/sigId element in the sub-document
//
// The order is a contract: relationship matching depends on strategy 1
// taking precedence over the embedded document. A malformed sub-document
// disables strategies 2-4 but is not an error here; the validator reports it.
func ExtractSigID(ruleID, embeddedXML string) Resolution {
	if m := trailingDigits.FindString(ruleID); m != "" {
		return Resolution{SigID: m, Source: SourceRuleID}
	}

	if strings.TrimSpace(embeddedXML) == "" {
		return Resolution{}
	}
	root, err := xmltree.ParseString(embeddedXML)
	if err != nil {
		return Resolution{}
	}

	if sig := sigFromProperties(root); sig != "" {
		return Resolution{SigID: sig, Source: SourceProperty}
	}

	if id, ok := root.Attr("id"); ok {
		if m := trailingDigits.FindString(id); m != "" {
			return Resolution{SigID: m, Source: SourceRulesetID}
		}
	}

	for _, name := range sigElementNames {
		for _, el := range root.Descendants(name) {
			if text := strings.TrimSpace(el.Text); text != "" {
				return Resolution{SigID: text, Source: SourceElement}
			}
		}
	}

	return Resolution{}
}

// sigFromProperties scans <property> elements for one named "sigid" and
// returns its value. The name may live under <n> or <name>.
func sigFromProperties(root *xmltree.Node) string {
	for _, prop := range root.Descendants("property") {
		if PropertyName(prop) != "sigid" {
			continue
		}
		if v := prop.TextOf("value"); v != "" {
			return v
		}
	}
	return ""
}

// PropertyName returns the name of an embedded-document property element,
// checking both historical tag spellings.
func PropertyName(prop *xmltree.Node) string {
	for _, tag := range propertyNameTags {
		if el := prop.Find(tag); el != nil {
			return strings.TrimSpace(el.Text)
		}
	}
	return ""
}
