// Package sigmap maps signature identifiers to the platform event IDs they
// cover, from a vendor-published JSON mapping file.
package sigmap

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rowanvale/sigbridge/internal/record"
)

// variantPrefix is the signature family the mapping file keys on; bare and
// prefixed spellings of the same signature are interchangeable in source
// data, so lookups index every variant.
const variantPrefix = "43-"

var eventRefPattern = regexp.MustCompile(`43-\d+`)

// flexString decodes either a JSON string or a bare number; the mapping
// file is inconsistent about quoting identifiers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// entry is one row of the mapping file. Signature ID may hold a
// comma-separated list.
type entry struct {
	EventID     flexString `json:"Event ID"`
	SignatureID flexString `json:"Signature ID"`
	Description string     `json:"Description"`
	AuditPolicy string     `json:"Audit Policy"`
}

// EventDetail is the metadata recorded for one event ID.
type EventDetail struct {
	Description string `json:"description"`
	AuditPolicy string `json:"audit_policy"`
}

// Mapping is the loaded, variant-indexed signature map. Immutable after
// Load; safe for concurrent readers.
type Mapping struct {
	bySignature map[string]map[string]bool
	details     map[string]EventDetail
}

// Load reads and indexes a mapping file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature mapping: %w", err)
	}
	return Parse(data)
}

// Parse indexes raw mapping JSON.
func Parse(data []byte) (*Mapping, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing signature mapping: %w", err)
	}

	m := &Mapping{
		bySignature: make(map[string]map[string]bool),
		details:     make(map[string]EventDetail),
	}
	for _, e := range entries {
		eventID := strings.TrimSpace(string(e.EventID))
		if eventID == "" {
			continue
		}
		m.details[eventID] = EventDetail{
			Description: e.Description,
			AuditPolicy: e.AuditPolicy,
		}
		for _, raw := range strings.Split(string(e.SignatureID), ",") {
			for _, variant := range signatureVariants(raw) {
				set, ok := m.bySignature[variant]
				if !ok {
					set = make(map[string]bool)
					m.bySignature[variant] = set
				}
				set[eventID] = true
			}
		}
	}
	return m, nil
}

// signatureVariants returns every spelling under which a signature should be
// indexed: verbatim, the bare suffix after a dash, and the prefixed form.
func signatureVariants(raw string) []string {
	sig := strings.TrimSpace(raw)
	if sig == "" {
		return nil
	}
	seen := map[string]bool{sig: true}
	if _, suffix, ok := strings.Cut(sig, "-"); ok && suffix != "" {
		seen[suffix] = true
	}
	if !strings.HasPrefix(sig, variantPrefix) {
		seen[variantPrefix+sig] = true
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// EventIDsForSignature returns the sorted event IDs covered by a signature.
// Match-value spellings ("47|6000114"), dashed identifiers, and bare
// signatures all resolve; an unknown signature returns nil.
func (m *Mapping) EventIDsForSignature(signature string) []string {
	sig := strings.TrimSpace(signature)
	if sig == "" {
		return nil
	}

	set := m.bySignature[sig]
	if set == nil {
		if _, after, ok := strings.Cut(sig, "|"); ok {
			sig = after
			set = m.bySignature[sig]
		}
	}
	if set == nil {
		if _, after, ok := strings.Cut(sig, "-"); ok {
			sig = after
			set = m.bySignature[sig]
		}
	}
	if set == nil {
		set = m.bySignature[variantPrefix+sig]
	}
	if len(set) == 0 {
		return nil
	}
	return sortedKeys(set)
}

// ExtractEventIDs scans free text for prefixed signature references and
// returns the sorted union of the event IDs they cover.
func (m *Mapping) ExtractEventIDs(text string) []string {
	if text == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, ref := range eventRefPattern.FindAllString(text, -1) {
		for _, id := range m.EventIDsForSignature(ref) {
			set[id] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return sortedKeys(set)
}

// EventDetail returns the metadata for one event ID.
func (m *Mapping) EventDetail(eventID string) (EventDetail, bool) {
	d, ok := m.details[eventID]
	return d, ok
}

// RuleEventIDs returns every event ID a rule references, through its
// resolved signature, its identifier, its description, and its embedded
// sub-document.
func (m *Mapping) RuleEventIDs(rule record.Rule) []string {
	set := make(map[string]bool)
	m.collectFromValues(set, rule.SigID.SigID, rule.ID, rule.Description)
	for _, id := range m.ExtractEventIDs(rule.EmbeddedXML) {
		set[id] = true
	}
	if len(set) == 0 {
		return nil
	}
	return sortedKeys(set)
}

// AlarmEventIDs returns every event ID an alarm references, through its
// match value, note, and raw document text.
func (m *Mapping) AlarmEventIDs(alarm record.Alarm) []string {
	set := make(map[string]bool)
	m.collectFromValues(set, alarm.MatchValue, alarm.Note)
	for _, id := range m.ExtractEventIDs(alarm.RawXML) {
		set[id] = true
	}
	if len(set) == 0 {
		return nil
	}
	return sortedKeys(set)
}

var tokenSplit = regexp.MustCompile(`[|,\s]+`)

func (m *Mapping) collectFromValues(set map[string]bool, values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		for _, id := range m.ExtractEventIDs(v) {
			set[id] = true
		}
		for _, token := range tokenSplit.Split(v, -1) {
			if token == "" {
				continue
			}
			for _, id := range m.EventIDsForSignature(token) {
				set[id] = true
			}
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
