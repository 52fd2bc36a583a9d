package harness

import "github.com/ginhom/hades/internal/store"

// StepTrace records what one step ran and produced.
type StepTrace struct {
	Step   int      `json:"step"`
	Entity string   `json:"entity"`
	Op     string   `json:"op,omitempty"`
	SQL    string   `json:"sql,omitempty"`
	IDs    []string `json:"ids"`
	Count  *int64   `json:"count,omitempty"`
	Total  *int64   `json:"total,omitempty"`
	Error  string   `json:"error,omitempty"`

	records []store.Record
}

// Records returns the records the step returned.
func (t StepTrace) Records() []store.Record { return t.records }

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	Trace []StepTrace `json:"trace"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
