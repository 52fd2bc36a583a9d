package engine

import (
	"errors"
	"fmt"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/parser"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidOperationName indicates an identifier without a known
	// prefix or with a segment that maps to no property.
	ErrCodeInvalidOperationName ErrorCode = "INVALID_OPERATION_NAME"

	// ErrCodeUnknownProperty indicates a predicate or sort naming a
	// property the entity does not have.
	ErrCodeUnknownProperty ErrorCode = "UNKNOWN_PROPERTY"

	// ErrCodeInvalidParameterConfiguration indicates declared arguments
	// that break the naming rules or do not match the predicate.
	ErrCodeInvalidParameterConfiguration ErrorCode = "INVALID_PARAMETER_CONFIGURATION"

	// ErrCodeArgumentCountMismatch indicates a call with the wrong number
	// of values.
	ErrCodeArgumentCountMismatch ErrorCode = "ARGUMENT_COUNT_MISMATCH"

	// ErrCodeInvalidArgument indicates a special argument of the wrong type.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeInvalidQuery covers the remaining compile failures.
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"
)

// Error is returned by registration and by argument binding.
//
// Storage errors are never wrapped in an Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Entity is the entity the operation belongs to.
	Entity string

	// Operation is the operation identifier, empty for ad-hoc predicates.
	Operation string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s.%s: %v", e.Code, e.Entity, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Entity, e.Err)
}

// Unwrap returns the underlying cause, so errors.Is matches the sentinels
// of the parser, metamodel and param packages.
func (e *Error) Unwrap() error { return e.Err }

func newError(entity, operation string, err error) *Error {
	return &Error{Code: codeOf(err), Entity: entity, Operation: operation, Err: err}
}

// codeOf classifies err. Name errors are checked first since they may also
// wrap an unknown property.
func codeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, parser.ErrInvalidOperationName):
		return ErrCodeInvalidOperationName
	case errors.Is(err, metamodel.ErrUnknownProperty):
		return ErrCodeUnknownProperty
	case errors.Is(err, param.ErrInvalidParameterConfiguration):
		return ErrCodeInvalidParameterConfiguration
	case errors.Is(err, param.ErrArgumentCountMismatch):
		return ErrCodeArgumentCountMismatch
	case errors.Is(err, param.ErrInvalidArgument):
		return ErrCodeInvalidArgument
	default:
		return ErrCodeInvalidQuery
	}
}

// CodeOf returns the code of the first Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsRegistrationError reports whether err was raised while registering an
// operation.
func IsRegistrationError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidOperationName, ErrCodeUnknownProperty, ErrCodeInvalidParameterConfiguration:
		return true
	}
	return false
}
