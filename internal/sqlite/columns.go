package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Column codecs shared by the entity mappings.

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// jsonText encodes a value stored in a TEXT column.
func jsonText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonColumns encodes several values in order, stopping at the first error.
func jsonColumns(vs ...any) ([]string, error) {
	out := make([]string, len(vs))
	for i, v := range vs {
		s, err := jsonText(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// fromJSON decodes TEXT columns into their destinations in pairs.
func fromJSON(pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		s, _ := pairs[i].(string)
		if err := json.Unmarshal([]byte(s), pairs[i+1]); err != nil {
			return fmt.Errorf("decode json column: %w", err)
		}
	}
	return nil
}
