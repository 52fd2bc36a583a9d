package schema

import (
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes reported by Load.
const (
	ErrCodeNotFound      = "S001"
	ErrCodeNoFiles       = "S002"
	ErrCodeLoadFailed    = "S003"
	ErrCodeBuildFailed   = "S004"
	ErrCodeEntity        = "S101"
	ErrCodeProperty      = "S102"
	ErrCodeRepository    = "S111"
	ErrCodeOperation     = "S112"
	ErrCodeUnknownEntity = "S113"
)

// Error is a schema problem, positioned in its CUE source when possible.
type Error struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	where := e.Path
	if e.Pos.IsValid() {
		where = fmt.Sprintf("%s:%d:%d", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
		if e.Path != "" {
			where += " " + e.Path
		}
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", where, e.Code, e.Message)
}

// fromCUE converts a CUE evaluation error, keeping the first position.
func fromCUE(code, path string, err error) *Error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Code: code, Path: path, Message: err.Error()}
	}
	first := errs[0]
	e := &Error{Code: code, Path: path, Message: first.Error()}
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		e.Pos = pos[0]
	}
	return e
}
