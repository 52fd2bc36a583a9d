package queryir

import (
	"errors"
	"fmt"

	"github.com/ginhom/hades/internal/metamodel"
)

// ErrInvalidPredicate is returned for leaves whose comparator does not fit
// the property's kind, or for malformed select inputs.
var ErrInvalidPredicate = errors.New("invalid predicate")

// Validate checks a Select against its entity's property graph.
//
// Every leaf and every sort property must resolve to a leaf property
// (metamodel.ErrUnknownProperty otherwise), and comparators must suit the
// property kind (ErrInvalidPredicate otherwise). All problems are reported,
// joined with errors.Join.
//
// Validate is a pure function with no side effects.
func Validate(sel Select) error {
	if sel.From == nil {
		return fmt.Errorf("%w: select without entity", ErrInvalidPredicate)
	}
	v := &validator{entity: sel.From}
	for _, leaf := range sel.Filter.Leaves() {
		v.validateLeaf(leaf)
	}
	for o := range sel.Sort.All() {
		if _, err := sel.From.Resolve(o.Property); err != nil {
			v.errs = append(v.errs, fmt.Errorf("sort: %w", err))
		}
	}
	return errors.Join(v.errs...)
}

// validator accumulates errors during traversal.
type validator struct {
	entity *metamodel.Entity
	errs   []error
}

func (v *validator) validateLeaf(n Node) {
	prop, err := v.entity.Resolve(n.Property)
	if err != nil {
		v.errs = append(v.errs, err)
		return
	}

	switch n.Comparator {
	case Like, NotLike, StartingWith, EndingWith, Containing:
		if prop.Kind != metamodel.KindString {
			v.addError("%s requires a string property, %s is %s", n.Comparator, prop.Path, prop.Kind)
		}
	case IsTrue, IsFalse:
		if prop.Kind != metamodel.KindBool {
			v.addError("%s requires a bool property, %s is %s", n.Comparator, prop.Path, prop.Kind)
		}
	}

	if n.Comparator.Arity() == 1 && n.Arg < NoArg {
		v.addError("leaf on %s has negative argument index %d", prop.Path, n.Arg)
	}
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidPredicate}, args...)...))
}
