package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginhom/hades/internal/store"
)

func TestCheckExpect(t *testing.T) {
	rows := StepTrace{
		IDs: []string{"u2", "u1"},
		records: []store.Record{
			{"id": "u2", "lastname": "Beauford", "age": int64(60), "active": true},
			{"id": "u1", "lastname": "Matthews", "age": int64(50), "active": true},
		},
		Total: ptr(int64(4)),
	}
	count := StepTrace{IDs: []string{}, Count: ptr(int64(3))}
	failed := StepTrace{IDs: []string{}, Error: "UNKNOWN_PROPERTY"}

	tests := []struct {
		name   string
		trace  StepTrace
		expect *Expect
		want   []string
	}{
		{name: "no expectations", trace: rows},
		{name: "ids in order", trace: rows, expect: &Expect{IDs: []string{"u2", "u1"}}},
		{
			name:   "ids out of order",
			trace:  rows,
			expect: &Expect{IDs: []string{"u1", "u2"}},
			want:   []string{"ids: expected [u1 u2], got [u2 u1]"},
		},
		{name: "ids any order", trace: rows, expect: &Expect{IDs: []string{"u1", "u2"}, AnyOrder: true}},
		{name: "row count", trace: rows, expect: &Expect{Count: ptr(int64(2))}},
		{name: "scalar count", trace: count, expect: &Expect{Count: ptr(int64(3))}},
		{
			name:   "total mismatch",
			trace:  rows,
			expect: &Expect{Total: ptr(int64(5))},
			want:   []string{"total: expected 5, got 4"},
		},
		{
			name:   "total without page",
			trace:  count,
			expect: &Expect{Total: ptr(int64(3))},
			want:   []string{"total: step returned no page"},
		},
		{
			name:   "empty",
			trace:  rows,
			expect: &Expect{Empty: true},
			want:   []string{"expected no records, got [u2 u1]"},
		},
		{
			name:   "first subset",
			trace:  rows,
			expect: &Expect{First: map[string]any{"lastname": "Beauford", "age": 60, "active": true}},
		},
		{
			name:   "first mismatch",
			trace:  rows,
			expect: &Expect{First: map[string]any{"age": 61, "nickname": "Boyd"}},
			want:   []string{"first.age: expected 61, got 60", "first.nickname: column not returned"},
		},
		{name: "expected error", trace: failed, expect: &Expect{Error: "UNKNOWN_PROPERTY"}},
		{
			name:  "unexpected error",
			trace: failed,
			want:  []string{"unexpected error UNKNOWN_PROPERTY"},
		},
		{
			name:   "missing error",
			trace:  rows,
			expect: &Expect{Error: "INVALID_ARGUMENT"},
			want:   []string{`error: expected "INVALID_ARGUMENT", got ""`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkExpect(tt.trace, tt.expect))
		})
	}
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(3, int64(3)))
	assert.True(t, valuesEqual(2.5, 2.5))
	assert.True(t, valuesEqual(true, int64(1)))
	assert.True(t, valuesEqual(false, false))
	assert.True(t, valuesEqual("a", "a"))
	assert.False(t, valuesEqual("3", int64(3)))
	assert.False(t, valuesEqual(true, int64(0)))
}
