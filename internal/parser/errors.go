package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidOperationName is returned when an identifier lacks a configured
// prefix or a segment cannot be mapped to a property path.
var ErrInvalidOperationName = errors.New("invalid operation name")

// NameError describes why an identifier could not be parsed.
//
// When the failure is an unresolvable segment, Err holds the
// *metamodel.PropertyError naming that segment, and the NameError matches
// both ErrInvalidOperationName and metamodel.ErrUnknownProperty.
type NameError struct {
	Identifier string
	Reason     string
	Err        error
}

func (e *NameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %q: %s: %v", ErrInvalidOperationName, e.Identifier, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v %q: %s", ErrInvalidOperationName, e.Identifier, e.Reason)
}

// Unwrap exposes ErrInvalidOperationName and the underlying cause.
func (e *NameError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidOperationName, e.Err}
	}
	return []error{ErrInvalidOperationName}
}

func invalid(identifier, format string, args ...any) *NameError {
	return &NameError{Identifier: identifier, Reason: fmt.Sprintf(format, args...)}
}
