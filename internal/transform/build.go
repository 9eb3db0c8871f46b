package transform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rowanvale/sigbridge/internal/record"
	"github.com/rowanvale/sigbridge/internal/synth"
	"github.com/rowanvale/sigbridge/internal/xmltree"
)

// BuildAlarms assembles the output <alarms> document from alarm records.
//
// With a template element, each alarm deep-copies the template and overwrites
// only the name, minVersion, note, and matchValue fields; everything else the
// template author configured (action lists, device scopes, tuning) survives.
// Without a template, each alarm is a complete default document from the
// synthesizer. Both paths produce the same required children.
func BuildAlarms(template *xmltree.Node, alarms []record.Alarm) (*xmltree.Node, error) {
	root := &xmltree.Node{Name: "alarms"}
	for _, a := range alarms {
		var el *xmltree.Node
		if template != nil {
			el = template.Clone()
			el.SetAttr("name", a.Name)
			el.SetAttr("minVersion", a.MinVersion)
			el.SetText(a.Note, "alarmData", "note")
			el.SetText(a.MatchValue, "conditionData", "matchValue")
		} else {
			doc := synth.Synthesize(synth.Fields{
				Name:          a.Name,
				MinVersion:    a.MinVersion,
				Severity:      a.Severity,
				Note:          a.Note,
				MatchField:    a.MatchField,
				MatchValue:    a.MatchValue,
				ConditionType: a.ConditionType,
			})
			parsed, err := xmltree.ParseString(doc)
			if err != nil {
				return nil, fmt.Errorf("synthesized alarm %q: %w", a.Name, err)
			}
			el = parsed
		}
		root.Children = append(root.Children, el)
	}
	return root, nil
}

// LoadTemplate reads a template document and returns its <alarm> element.
// The root may be the alarm itself or a container holding one.
func LoadTemplate(path string) (*xmltree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	root, err := xmltree.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	if root.Name == "alarm" {
		return root, nil
	}
	if el := root.Find("alarm"); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("template %s has no <alarm> element", path)
}

// WriteDocument writes the assembled tree as a complete document. The write
// goes through a temp file in the target directory and a rename, so a failed
// run never leaves a truncated document behind.
func WriteDocument(root *xmltree.Node, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sigbridge-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(root.Document()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
