package validate

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/rowanvale/sigbridge/internal/xmlstream"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// Alarms validates an alarm export document. Same contract as Rules: only a
// syntax fault returns an error, everything else accumulates. An alarm that
// fails every check still counts toward Scanned.
func Alarms(r io.Reader) (*Result, error) {
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
				Message: "alarm document",
				Err:     err,
			}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "alarm" {
			continue
		}
		node, err := xmltree.ParseElement(d, &start)
		if err != nil {
			return nil, &xmlstream.ParseError{
				Code:    xmlstream.ErrCodeSyntax,
				Message: "alarm element",
				Err:     err,
			}
		}
		result.Scanned++
		checkAlarm(result, result.Scanned, node)
	}

	if result.Scanned == 0 {
		result.addWarning(Finding{Code: CodeNoElements, Message: "no alarms found in the document"})
	}
	return result, nil
}

// AlarmsFile is Alarms over a file path.
func AlarmsFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Alarms(f)
}

func checkAlarm(result *Result, index int, alarm *xmltree.Node) {
	if _, ok := alarm.Attr("name"); !ok {
		result.addError(Finding{
			Code:    CodeMissingAttribute,
			Index:   index,
			Field:   "name",
			Message: fmt.Sprintf("alarm %d: missing required %q attribute", index, "name"),
		})
	}

	if data := alarm.Find("alarmData"); data == nil {
		result.addError(Finding{
			Code:    CodeMissingElement,
			Index:   index,
			Field:   "alarmData",
			Message: fmt.Sprintf("alarm %d: missing %q element", index, "alarmData"),
		})
	} else {
		result.checkSeverity(index, data.TextOf("severity"))
	}

	checkConditionData(result, index, alarm)

	if actions := alarm.Find("actions"); actions == nil {
		result.addError(Finding{
			Code:    CodeMissingElement,
			Index:   index,
			Field:   "actions",
			Message: fmt.Sprintf("alarm %d: missing %q element", index, "actions"),
		})
	} else if len(actions.FindAll("actionData")) == 0 {
		result.addWarning(Finding{
			Code:    CodeNoActions,
			Index:   index,
			Field:   "actions",
			Message: fmt.Sprintf("alarm %d: no actionData entries found in actions", index),
		})
	}
}

func checkConditionData(result *Result, index int, alarm *xmltree.Node) {
	cond := alarm.Find("conditionData")
	if cond == nil {
		result.addError(Finding{
			Code:    CodeMissingElement,
			Index:   index,
			Field:   "conditionData",
			Message: fmt.Sprintf("alarm %d: missing %q element", index, "conditionData"),
		})
		return
	}

	if cond.Find("matchField") == nil {
		result.addError(Finding{
			Code:    CodeMissingElement,
			Index:   index,
			Field:   "matchField",
			Message: fmt.Sprintf("alarm %d: missing %q in conditionData", index, "matchField"),
		})
	}

	matchValue := cond.Find("matchValue")
	if matchValue == nil {
		result.addError(Finding{
			Code:    CodeMissingElement,
			Index:   index,
			Field:   "matchValue",
			Message: fmt.Sprintf("alarm %d: missing %q in conditionData", index, "matchValue"),
		})
		return
	}

	// Legacy exports carry free-form match values; a bad shape is a
	// warning so old data keeps validating.
	if v := cond.TextOf("matchValue"); v != "" && !matchValuePattern.MatchString(v) {
		result.addWarning(Finding{
			Code:    CodeMatchValueFormat,
			Index:   index,
			Field:   "matchValue",
			Message: fmt.Sprintf("alarm %d: matchValue format may be incorrect: %q", index, v),
		})
	}
}
