package paging

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// ErrInvalidSort is returned when a Sort or Order is constructed from
// missing or empty property names.
var ErrInvalidSort = errors.New("invalid sort")

// Direction is the ordering direction of a single Order.
// The zero value is Asc.
type Direction int

const (
	// Asc orders smallest first. It is the default direction.
	Asc Direction = iota
	// Desc orders largest first.
	Desc
)

// String returns the SQL keyword for the direction.
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection parses "asc" or "desc" case-insensitively.
// An empty string yields Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, s)
	}
}

// Order is one property of a Sort together with its direction.
type Order struct {
	Direction Direction
	Property  string // dotted property path, e.g. "address.city"
}

// Ascending returns an ascending Order on property.
func Ascending(property string) Order {
	return Order{Direction: Asc, Property: property}
}

// Descending returns a descending Order on property.
func Descending(property string) Order {
	return Order{Direction: Desc, Property: property}
}

// String renders the order as "property DIR".
func (o Order) String() string {
	return o.Property + " " + o.Direction.String()
}

// Sort is an immutable, ordered sequence of Orders.
//
// The zero value is the unsorted Sort; IsZero reports it. Every non-zero
// Sort holds at least one Order.
type Sort struct {
	orders []Order
}

// NewSort returns a Sort ordering every property in the given direction.
// At least one property is required and none may be empty.
func NewSort(dir Direction, properties ...string) (Sort, error) {
	orders := make([]Order, 0, len(properties))
	for _, p := range properties {
		orders = append(orders, Order{Direction: dir, Property: p})
	}
	return By(orders...)
}

// By returns a Sort over the given orders, validating each of them.
func By(orders ...Order) (Sort, error) {
	if len(orders) == 0 {
		return Sort{}, fmt.Errorf("%w: at least one property is required", ErrInvalidSort)
	}
	for i, o := range orders {
		if strings.TrimSpace(o.Property) == "" {
			return Sort{}, fmt.Errorf("%w: property %d is empty", ErrInvalidSort, i)
		}
		if o.Direction != Asc && o.Direction != Desc {
			return Sort{}, fmt.Errorf("%w: property %q has unknown direction %d", ErrInvalidSort, o.Property, o.Direction)
		}
	}
	return Sort{orders: slices.Clone(orders)}, nil
}

// MustBy is like By but panics on error. Intended for static sorts.
func MustBy(orders ...Order) Sort {
	s, err := By(orders...)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSort parses "firstname:desc,lastname" into a Sort.
// Direction suffixes are optional and default to ascending.
func ParseSort(s string) (Sort, error) {
	if strings.TrimSpace(s) == "" {
		return Sort{}, fmt.Errorf("%w: empty sort expression", ErrInvalidSort)
	}
	var orders []Order
	for _, part := range strings.Split(s, ",") {
		prop, dirText, _ := strings.Cut(strings.TrimSpace(part), ":")
		dir, err := ParseDirection(dirText)
		if err != nil {
			return Sort{}, err
		}
		orders = append(orders, Order{Direction: dir, Property: strings.TrimSpace(prop)})
	}
	return By(orders...)
}

// IsZero reports whether s is the unsorted Sort.
func (s Sort) IsZero() bool {
	return len(s.orders) == 0
}

// Len returns the number of orders.
func (s Sort) Len() int {
	return len(s.orders)
}

// Orders returns a copy of the orders in sequence.
func (s Sort) Orders() []Order {
	return slices.Clone(s.orders)
}

// All iterates the orders in sequence.
func (s Sort) All() iter.Seq[Order] {
	return func(yield func(Order) bool) {
		for _, o := range s.orders {
			if !yield(o) {
				return
			}
		}
	}
}

// And returns a new Sort with the orders of other appended to s.
func (s Sort) And(other Sort) Sort {
	if other.IsZero() {
		return s
	}
	if s.IsZero() {
		return other
	}
	return Sort{orders: slices.Concat(s.orders, other.orders)}
}

// Equal reports whether both sorts hold the same orders in the same sequence.
func (s Sort) Equal(other Sort) bool {
	return slices.Equal(s.orders, other.orders)
}

// String renders the sort as "a ASC, b DESC", or "UNSORTED".
func (s Sort) String() string {
	if s.IsZero() {
		return "UNSORTED"
	}
	parts := make([]string, len(s.orders))
	for i, o := range s.orders {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}
