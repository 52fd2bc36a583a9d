package paging

import (
	"errors"
	"fmt"
)

// ErrInvalidPageRequest is returned for negative page indexes or
// non-positive page sizes.
var ErrInvalidPageRequest = errors.New("invalid page request")

// PageRequest describes one window of a result: a zero-based page index,
// a page size and an optional Sort. It is immutable.
//
// A nil *PageRequest means "unpaged" throughout this module.
type PageRequest struct {
	page int
	size int
	sort Sort
}

// NewPageRequest returns a request for page (zero-based) of the given size.
// At most one Sort may be supplied.
func NewPageRequest(page, size int, sort ...Sort) (*PageRequest, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page index %d must not be negative", ErrInvalidPageRequest, page)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: page size %d must be positive", ErrInvalidPageRequest, size)
	}
	if len(sort) > 1 {
		return nil, fmt.Errorf("%w: at most one sort", ErrInvalidPageRequest)
	}
	p := &PageRequest{page: page, size: size}
	if len(sort) == 1 {
		p.sort = sort[0]
	}
	return p, nil
}

// MustPageRequest is like NewPageRequest but panics on error.
func MustPageRequest(page, size int, sort ...Sort) *PageRequest {
	p, err := NewPageRequest(page, size, sort...)
	if err != nil {
		panic(err)
	}
	return p
}

// Page returns the zero-based page index.
func (p *PageRequest) Page() int { return p.page }

// Size returns the page size.
func (p *PageRequest) Size() int { return p.size }

// Sort returns the sort carried by the request (possibly zero).
func (p *PageRequest) Sort() Sort { return p.sort }

// Offset returns the index of the first row of the page.
func (p *PageRequest) Offset() int { return p.page * p.size }

// Limit returns the maximum number of rows of the page.
func (p *PageRequest) Limit() int { return p.size }

// Next returns the request for the following page.
func (p *PageRequest) Next() *PageRequest {
	return &PageRequest{page: p.page + 1, size: p.size, sort: p.sort}
}

// Previous returns the request for the preceding page, or the first page.
func (p *PageRequest) Previous() *PageRequest {
	if p.page == 0 {
		return p
	}
	return &PageRequest{page: p.page - 1, size: p.size, sort: p.sort}
}

// Equal reports whether index, size and sort are all equal.
// Two nil requests are equal.
func (p *PageRequest) Equal(other *PageRequest) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.page == other.page && p.size == other.size && p.sort.Equal(other.sort)
}

func (p *PageRequest) String() string {
	return fmt.Sprintf("page %d, size %d, sort %s", p.page, p.size, p.sort)
}
