package paging

import "iter"

// Page is one bounded slice of a larger result together with the request
// that produced it and the total element count across all pages.
type Page[T any] struct {
	content  []T
	pageable *PageRequest
	total    int64
}

// NewPage builds a page. A nil pageable marks a page built over an unpaged
// full result.
func NewPage[T any](content []T, pageable *PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{content: content, pageable: pageable, total: total}
}

// Unpaged wraps a full result as a single page.
func Unpaged[T any](content []T) Page[T] {
	return NewPage(content, nil, int64(len(content)))
}

// MapPage converts the content of p with fn, keeping paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) (U, error)) (Page[U], error) {
	out := make([]U, 0, len(p.content))
	for _, v := range p.content {
		u, err := fn(v)
		if err != nil {
			return Page[U]{}, err
		}
		out = append(out, u)
	}
	return Page[U]{content: out, pageable: p.pageable, total: p.total}, nil
}

// Content returns the elements of the page.
func (p Page[T]) Content() []T { return p.content }

// All iterates the elements of the page.
func (p Page[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range p.content {
			if !yield(v) {
				return
			}
		}
	}
}

// Pageable returns the originating request, or nil for unpaged results.
func (p Page[T]) Pageable() *PageRequest { return p.pageable }

// TotalElements returns the number of elements across all pages.
func (p Page[T]) TotalElements() int64 { return p.total }

// Number returns the zero-based page index.
func (p Page[T]) Number() int {
	if p.pageable == nil {
		return 0
	}
	return p.pageable.page
}

// Size returns the requested page size, or the content length when unpaged.
func (p Page[T]) Size() int {
	if p.pageable == nil {
		return len(p.content)
	}
	return p.pageable.size
}

// NumberOfElements returns the number of elements on this page.
func (p Page[T]) NumberOfElements() int { return len(p.content) }

// TotalPages returns ceil(total / size).
func (p Page[T]) TotalPages() int {
	size := int64(p.Size())
	if size == 0 {
		return 0
	}
	return int((p.total + size - 1) / size)
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Number() > 0
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	if p.pageable == nil {
		return false
	}
	return int64(p.Number()+1)*int64(p.pageable.size) < p.total
}

// Sort returns the sort of the originating request.
func (p Page[T]) Sort() Sort {
	if p.pageable == nil {
		return Sort{}
	}
	return p.pageable.sort
}
