package store

import (
	"context"
	"fmt"
)

var ruleColumns = []string{
	"rule_id", "normid", "revision", "sid", "class", "message", "description",
	"origin", "severity", "type", "action", "action_initial",
	"action_disallowed", "other_bits_default", "other_bits_disallowed",
	"xml_content", "sig_id", "sig_source",
}

// SaveRules upserts rule field maps, keyed by rule_id. Re-importing the same
// export is idempotent; a changed export overwrites the previous row. Field
// maps without a rule_id are skipped. The whole batch commits or none of it
// does.
func (s *Store) SaveRules(ctx context.Context, fields []map[string]string) error {
	return s.saveAll(ctx, "rules", ruleColumns, "rule_id", fields)
}

// ListRules returns every stored rule field map, ordered by rule_id.
func (s *Store) ListRules(ctx context.Context) ([]map[string]string, error) {
	return s.listAll(ctx, "rules", ruleColumns, "rule_id")
}

// CountRules returns the number of stored rules.
func (s *Store) CountRules(ctx context.Context) (int, error) {
	return s.count(ctx, "rules")
}

func (s *Store) saveAll(ctx context.Context, table string, columns []string, key string, fields []map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving %s: %w", table, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL(table, columns, key))
	if err != nil {
		return fmt.Errorf("saving %s: %w", table, err)
	}
	defer stmt.Close()

	for _, m := range fields {
		if m[key] == "" {
			continue
		}
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = m[col]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("saving %s %q: %w", table, m[key], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving %s: %w", table, err)
	}
	return nil
}

func (s *Store) listAll(ctx context.Context, table string, columns []string, key string) ([]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, selectSQL(table, columns, key))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var out []map[string]string
	values := make([]string, len(columns))
	scan := make([]any, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("listing %s: %w", table, err)
		}
		m := make(map[string]string, len(columns))
		for i, col := range columns {
			if values[i] != "" {
				m[col] = values[i]
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	return out, nil
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
