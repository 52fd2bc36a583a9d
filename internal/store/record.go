package store

import (
	"fmt"
	"time"
)

// Record is one result row keyed by column name.
type Record map[string]any

// ID returns the record's id column as a string.
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// String returns the column as a string, or "" when it is NULL or not text.
func (r Record) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int64 returns the column as an int64. ok is false when the column is NULL
// or not an integer.
func (r Record) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns the column as a bool. Integer columns are true when non-zero.
func (r Record) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	default:
		return false
	}
}

// Time returns the column as a time.Time.
func (r Record) Time(column string) (time.Time, bool) {
	t, ok := r[column].(time.Time)
	return t, ok
}

// Project returns the values of columns, for compact comparisons in tests
// and CLI output.
func (r Record) Project(columns ...string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

func (r Record) GoString() string {
	return fmt.Sprintf("store.Record%v", map[string]any(r))
}
