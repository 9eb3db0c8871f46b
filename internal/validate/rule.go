package validate

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/xmlstream"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// requiredRuleElements are the children every rule element must carry,
// non-empty, in document order of the report.
var requiredRuleElements = []string{"id", "message", "severity", "text"}

// Rules validates a rule export document. The returned error is non-nil
// only for a markup syntax fault; every data-quality problem lands in the
// Result. Validation runs its own streaming pass over the source.
func Rules(r io.Reader) (*Result, error) {
	result := &Result{}
	d := xmltree.NewDecoder(r)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &xmlstream.ParseError{
				Code:    xmlstream.ErrCodeSyntax,
				Message: "rule document",
				Err:     err,
			}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "rule" {
			continue
		}
		node, err := xmltree.ParseElement(d, &start)
		if err != nil {
			return nil, &xmlstream.ParseError{
				Code:    xmlstream.ErrCodeSyntax,
				Message: "rule element",
				Err:     err,
			}
		}
		result.Scanned++
		checkRule(result, result.Scanned, node)
	}

	if result.Scanned == 0 {
		result.addWarning(Finding{Code: CodeNoElements, Message: "no rules found in the document"})
	}
	return result, nil
}

// RulesFile is Rules over a file path.
func RulesFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Rules(f)
}

func checkRule(result *Result, index int, rule *xmltree.Node) {
	for _, name := range requiredRuleElements {
		el := rule.Find(name)
		if el == nil {
			result.addError(Finding{
				Code:    CodeMissingElement,
				Index:   index,
				Field:   name,
				Message: fmt.Sprintf("rule %d: missing required element %q", index, name),
			})
			continue
		}
		if strings.TrimSpace(el.Text) == "" {
			result.addError(Finding{
				Code:    CodeEmptyElement,
				Index:   index,
				Field:   name,
				Message: fmt.Sprintf("rule %d: element %q is empty", index, name),
			})
		}
	}

	result.checkSeverity(index, rule.TextOf("severity"))

	if embedded := rule.TextOf("text"); embedded != "" {
		checkEmbedded(result, index, embedded)
	}
}

// checkEmbedded validates the rule's embedded sub-document independently:
// it must be well-formed, rooted at <ruleset>, and a declared sigid property
// must carry a value. A missing sigid property is only a warning because
// signature extraction has other sources.
func checkEmbedded(result *Result, index int, embedded string) {
	root, err := xmltree.ParseString(embedded)
	if err != nil {
		result.addError(Finding{
			Code:    CodeEmbeddedSyntax,
			Index:   index,
			Field:   "text",
			Message: fmt.Sprintf("rule %d: embedded document is not well-formed: %v", index, err),
		})
		return
	}

	if root.Name != "ruleset" {
		result.addError(Finding{
			Code:    CodeEmbeddedRoot,
			Index:   index,
			Field:   "text",
			Message: fmt.Sprintf("rule %d: embedded document must be rooted at \"ruleset\", got %q", index, root.Name),
		})
		return
	}

	for _, prop := range root.Descendants("property") {
		if record.PropertyName(prop) != "sigid" {
			continue
		}
		if prop.TextOf("value") == "" {
			result.addError(Finding{
				Code:    CodeSigIDEmpty,
				Index:   index,
				Field:   "sigid",
				Message: fmt.Sprintf("rule %d: sigid property has no value", index),
			})
		}
		return
	}

	result.addWarning(Finding{
		Code:    CodeSigIDAbsent,
		Index:   index,
		Field:   "sigid",
		Message: fmt.Sprintf("rule %d: embedded document declares no sigid property", index),
	})
}

// matchValuePattern is the expected "<prefix>|<signature>" shape.
var matchValuePattern = regexp.MustCompile(`^\d+\|\d+$`)
