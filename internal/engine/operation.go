package engine

import (
	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/querysql"
)

// Operation is a registered, compiled operation. It is immutable and safe
// for concurrent invocation.
type Operation struct {
	entity   *metamodel.Entity
	sig      Signature
	parsed   *parser.ParsedOperation
	params   *param.Parameters
	compiled *querysql.Compiled
	shape    parser.Shape
}

// Name returns the operation identifier, e.g. "findByLastname".
func (op *Operation) Name() string { return op.sig.Name }

// Signature returns the declaration the operation was registered with.
func (op *Operation) Signature() Signature { return op.sig }

// Entity returns the entity the operation queries.
func (op *Operation) Entity() *metamodel.Entity { return op.entity }

// Shape returns whether the operation yields rows, one row or a count.
func (op *Operation) Shape() parser.Shape { return op.shape }

// Parsed returns the parsed identifier.
func (op *Operation) Parsed() *parser.ParsedOperation { return op.parsed }

// Parameters returns the declared parameter model.
func (op *Operation) Parameters() *param.Parameters { return op.params }

// Compiled returns the query and count query.
func (op *Operation) Compiled() *querysql.Compiled { return op.compiled }
