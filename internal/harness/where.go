package harness

import (
	"fmt"

	"github.com/ginhom/hades/internal/queryir"
	"github.com/ginhom/hades/internal/specification"
)

// Where is the YAML form of a specification. Exactly one of And, Or, Not
// or Property is set. And and Or fold their operands left to right.
//
//	where:
//	  or:
//	    - {property: lastname, is: Equal, value: Matthews}
//	    - not: {property: active, is: IsTrue}
type Where struct {
	And []Where `yaml:"and,omitempty"`
	Or  []Where `yaml:"or,omitempty"`
	Not *Where  `yaml:"not,omitempty"`

	Property string `yaml:"property,omitempty"`
	Is       string `yaml:"is,omitempty"`
	Value    any    `yaml:"value,omitempty"`
}

func (w *Where) validate() error {
	set := 0
	if w.And != nil {
		set++
	}
	if w.Or != nil {
		set++
	}
	if w.Not != nil {
		set++
	}
	if w.Property != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of and, or, not, property is required")
	}

	if w.Property != "" {
		cmp, err := queryir.ParseComparator(w.Is)
		if err != nil {
			return err
		}
		if cmp.Arity() == 0 && w.Value != nil {
			return fmt.Errorf("%s takes no value", cmp)
		}
		return nil
	}

	for i := range w.And {
		if err := w.And[i].validate(); err != nil {
			return fmt.Errorf("and[%d]: %w", i, err)
		}
	}
	for i := range w.Or {
		if err := w.Or[i].validate(); err != nil {
			return fmt.Errorf("or[%d]: %w", i, err)
		}
	}
	if w.Not != nil {
		if err := w.Not.validate(); err != nil {
			return fmt.Errorf("not: %w", err)
		}
	}
	return nil
}

// Spec converts w into a specification. A nil Where is the absent
// predicate.
func (w *Where) Spec() (specification.Spec, error) {
	if w == nil {
		return specification.All(), nil
	}
	if err := w.validate(); err != nil {
		return specification.Spec{}, err
	}
	return w.spec(), nil
}

func (w *Where) spec() specification.Spec {
	switch {
	case w.And != nil:
		return w.fold(w.And, specification.And)
	case w.Or != nil:
		return w.fold(w.Or, specification.Or)
	case w.Not != nil:
		return specification.Not(w.Not.spec())
	default:
		cmp, _ := queryir.ParseComparator(w.Is)
		return specification.FromTree(queryir.ValueLeaf(w.Property, cmp, w.Value))
	}
}

func (w *Where) fold(ops []Where, combine func(...specification.Spec) specification.Spec) specification.Spec {
	specs := make([]specification.Spec, len(ops))
	for i := range ops {
		specs[i] = ops[i].spec()
	}
	return combine(specs...)
}
