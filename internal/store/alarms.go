package store

import (
	"context"
	"strings"
)

var alarmColumns = []string{
	"name", "min_version", "severity", "note", "assignee", "esc_assignee",
	"condition_type", "match_field", "match_value", "device_ids",
	"xml_content",
}

// SaveAlarms upserts alarm field maps, keyed by name.
func (s *Store) SaveAlarms(ctx context.Context, fields []map[string]string) error {
	return s.saveAll(ctx, "alarms", alarmColumns, "name", fields)
}

// ListAlarms returns every stored alarm field map, ordered by name.
func (s *Store) ListAlarms(ctx context.Context) ([]map[string]string, error) {
	return s.listAll(ctx, "alarms", alarmColumns, "name")
}

// CountAlarms returns the number of stored alarms.
func (s *Store) CountAlarms(ctx context.Context) (int, error) {
	return s.count(ctx, "alarms")
}

func upsertSQL(table string, columns []string, key string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
	b.WriteString(") ON CONFLICT(")
	b.WriteString(key)
	b.WriteString(") DO UPDATE SET ")
	first := true
	for _, col := range columns {
		if col == key {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(col)
		b.WriteString(" = excluded.")
		b.WriteString(col)
	}
	return b.String()
}

func selectSQL(table string, columns []string, key string) string {
	return "SELECT " + strings.Join(columns, ", ") + " FROM " + table + " ORDER BY " + key
}
