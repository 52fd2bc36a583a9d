package harness

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// checkExpect compares a step trace with its expectations and returns one
// message per mismatch.
func checkExpect(tr StepTrace, want *Expect) []string {
	if want == nil {
		if tr.Error != "" {
			return []string{fmt.Sprintf("unexpected error %s", tr.Error)}
		}
		return nil
	}

	if want.Error != "" || tr.Error != "" {
		if tr.Error != want.Error {
			return []string{fmt.Sprintf("error: expected %q, got %q", want.Error, tr.Error)}
		}
		return nil
	}

	var msgs []string
	if want.IDs != nil {
		got, exp := tr.IDs, want.IDs
		if want.AnyOrder {
			got, exp = sorted(got), sorted(exp)
		}
		if !slices.Equal(got, exp) {
			msgs = append(msgs, fmt.Sprintf("ids: expected %v, got %v", want.IDs, tr.IDs))
		}
	}

	if want.Count != nil {
		got := int64(len(tr.IDs))
		if tr.Count != nil {
			got = *tr.Count
		}
		if got != *want.Count {
			msgs = append(msgs, fmt.Sprintf("count: expected %d, got %d", *want.Count, got))
		}
	}

	if want.Total != nil {
		switch {
		case tr.Total == nil:
			msgs = append(msgs, "total: step returned no page")
		case *tr.Total != *want.Total:
			msgs = append(msgs, fmt.Sprintf("total: expected %d, got %d", *want.Total, *tr.Total))
		}
	}

	if want.Empty && len(tr.IDs) > 0 {
		msgs = append(msgs, fmt.Sprintf("expected no records, got %v", tr.IDs))
	}

	if want.First != nil {
		if len(tr.records) == 0 {
			msgs = append(msgs, "first: no records returned")
		} else {
			msgs = append(msgs, matchRecord(tr.records[0], want.First)...)
		}
	}
	return msgs
}

// matchRecord is a subset match of expected against rec. Numbers are
// compared by value so YAML ints match SQLite int64s.
func matchRecord(rec map[string]any, expected map[string]any) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		got, ok := rec[k]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("first.%s: column not returned", k))
			continue
		}
		if !valuesEqual(expected[k], got) {
			msgs = append(msgs, fmt.Sprintf("first.%s: expected %v, got %v", k, expected[k], got))
		}
	}
	return msgs
}

func valuesEqual(expected, actual any) bool {
	if en, ok := toNumber(expected); ok {
		if an, ok := toNumber(actual); ok {
			return en == an
		}
	}
	if eb, ok := expected.(bool); ok {
		if an, ok := toNumber(actual); ok {
			return eb == (an != 0)
		}
	}
	return reflect.DeepEqual(expected, actual)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func sorted(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
