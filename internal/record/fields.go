package record

import "encoding/json"

// Field maps are the flat form exchanged with the persistence layer: every
// value a string, keys matching the storage column names. Device filters are
// the only nested structure and travel as a JSON blob, matching how the
// storage layer keeps them.

// Fields flattens a Rule for storage.
func (r Rule) Fields() map[string]string {
	return map[string]string{
		"rule_id":               r.ID,
		"normid":                r.NormID,
		"revision":              r.Revision,
		"sid":                   r.SID,
		"class":                 r.Class,
		"message":               r.Message,
		"description":           r.Description,
		"origin":                r.Origin,
		"severity":              r.Severity,
		"type":                  r.Type,
		"action":                r.Action,
		"action_initial":        r.ActionInitial,
		"action_disallowed":     r.ActionDisallowed,
		"other_bits_default":    r.OtherBitsDefault,
		"other_bits_disallowed": r.OtherBitsDisallowed,
		"xml_content":           r.EmbeddedXML,
		"sig_id":                r.SigID.SigID,
		"sig_source":            string(r.SigID.Source),
	}
}

// RuleFromFields rebuilds a Rule from its stored field map.
func RuleFromFields(fields map[string]string) Rule {
	return Rule{
		ID:                  fields["rule_id"],
		NormID:              fields["normid"],
		Revision:            fields["revision"],
		SID:                 fields["sid"],
		Class:               fields["class"],
		Message:             fields["message"],
		Description:         fields["description"],
		Origin:              fields["origin"],
		Severity:            fields["severity"],
		Type:                fields["type"],
		Action:              fields["action"],
		ActionInitial:       fields["action_initial"],
		ActionDisallowed:    fields["action_disallowed"],
		OtherBitsDefault:    fields["other_bits_default"],
		OtherBitsDisallowed: fields["other_bits_disallowed"],
		EmbeddedXML:         fields["xml_content"],
		SigID: Resolution{
			SigID:  fields["sig_id"],
			Source: Source(fields["sig_source"]),
		},
	}
}

// Fields flattens an Alarm for storage. Action entries stay inside the raw
// XML; they have no storage columns of their own.
func (a Alarm) Fields() map[string]string {
	fields := map[string]string{
		"name":           a.Name,
		"min_version":    a.MinVersion,
		"severity":       a.Severity,
		"note":           a.Note,
		"assignee":       a.AssigneeID,
		"esc_assignee":   a.EscAssigneeID,
		"condition_type": a.ConditionType,
		"match_field":    a.MatchField,
		"match_value":    a.MatchValue,
		"xml_content":    a.RawXML,
	}
	if len(a.DeviceFilters) > 0 {
		if blob, err := json.Marshal(a.DeviceFilters); err == nil {
			fields["device_ids"] = string(blob)
		}
	}
	return fields
}

// AlarmFromFields rebuilds an Alarm from its stored field map.
func AlarmFromFields(fields map[string]string) Alarm {
	a := Alarm{
		Name:          fields["name"],
		MinVersion:    fields["min_version"],
		Severity:      fields["severity"],
		Note:          fields["note"],
		AssigneeID:    fields["assignee"],
		EscAssigneeID: fields["esc_assignee"],
		ConditionType: fields["condition_type"],
		MatchField:    fields["match_field"],
		MatchValue:    fields["match_value"],
		RawXML:        fields["xml_content"],
	}
	if blob := fields["device_ids"]; blob != "" {
		// Corrupt blobs degrade to "no filters"; the raw XML still holds
		// the authoritative copy.
		_ = json.Unmarshal([]byte(blob), &a.DeviceFilters)
	}
	return a
}
