package param

import (
	"fmt"

	"github.com/ginhom/hades/internal/paging"
)

// Window is a row range applied to a query.
type Window struct {
	Offset int
	Limit  int
}

// Bound is a query together with the values of one call. A Bound is created
// per call and never shared.
type Bound struct {
	Query string
	// Args holds positional values in placeholder order. It is nil when
	// the arguments bind by name.
	Args []any
	// Named holds values by bound name. It is nil for positional arguments.
	Named map[string]any
	// Window is nil when no paging applies.
	Window *Window
	// Sort is the effective runtime sort, zero when none.
	Sort paging.Sort
	// Pageable is the call's page request, nil when absent or unpaged.
	Pageable *paging.PageRequest
}

// Binder holds the validated values of one call against Parameters.
type Binder struct {
	params   *Parameters
	values   []any
	pageable *paging.PageRequest
	sort     paging.Sort
}

// NewBinder checks values against params. The value count must equal the
// declared argument count exactly. Special arguments accept nil, and
// otherwise a *paging.PageRequest (Pageable) or a paging.Sort or
// *paging.Sort (Sort).
func NewBinder(params *Parameters, values ...any) (*Binder, error) {
	if len(values) != params.Len() {
		return nil, fmt.Errorf("%w: %d declared, %d given", ErrArgumentCountMismatch, params.Len(), len(values))
	}

	b := &Binder{params: params, values: values}

	if i := params.PageableIndex(); i >= 0 {
		switch v := values[i].(type) {
		case nil:
		case *paging.PageRequest:
			b.pageable = v
		default:
			return nil, fmt.Errorf("%w: argument %d: Pageable expects *paging.PageRequest, got %T", ErrInvalidArgument, i, v)
		}
	}

	if i := params.SortIndex(); i >= 0 {
		switch v := values[i].(type) {
		case nil:
		case paging.Sort:
			b.sort = v
		case *paging.Sort:
			if v != nil {
				b.sort = *v
			}
		default:
			return nil, fmt.Errorf("%w: argument %d: Sort expects paging.Sort, got %T", ErrInvalidArgument, i, v)
		}
	}

	return b, nil
}

// Pageable returns the Pageable value, or nil when absent or nil.
func (b *Binder) Pageable() *paging.PageRequest { return b.pageable }

// Sort returns the runtime sort: an explicit Sort argument wins over the
// sort carried by the Pageable. The result is zero when neither is set.
func (b *Binder) Sort() paging.Sort {
	if !b.sort.IsZero() {
		return b.sort
	}
	if b.pageable != nil {
		return b.pageable.Sort()
	}
	return paging.Sort{}
}

// Bind binds the bindable values onto query. Special arguments are skipped.
func (b *Binder) Bind(query string) Bound {
	bound := Bound{
		Query:    query,
		Sort:     b.Sort(),
		Pageable: b.pageable,
	}

	if b.params.Named() {
		bound.Named = make(map[string]any, b.params.BindableCount())
	} else {
		bound.Args = make([]any, 0, b.params.BindableCount())
	}

	for i, v := range b.values {
		p := b.params.At(i)
		if !p.IsBindable() {
			continue
		}
		if p.IsNamed() {
			bound.Named[p.Name()] = v
			continue
		}
		bound.Args = append(bound.Args, v)
	}
	return bound
}

// BindAndPrepare is Bind plus the window derived from the Pageable. Without
// a Pageable value the full result is returned.
func (b *Binder) BindAndPrepare(query string) Bound {
	bound := b.Bind(query)
	if b.pageable != nil {
		bound.Window = &Window{Offset: b.pageable.Offset(), Limit: b.pageable.Limit()}
	}
	return bound
}
