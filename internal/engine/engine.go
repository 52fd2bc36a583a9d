package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/querysql"
	"github.com/ginhom/hades/internal/queryir"
	"github.com/ginhom/hades/internal/store"
)

// Executor runs SQL produced by the engine. Implemented by store.Store and
// pgstore.Store.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) ([]store.Record, error)
	Count(ctx context.Context, query string, args ...any) (int64, error)
}

// Signature declares one operation: its identifier, its argument list and
// optionally its result shape ("collection", "single" or "count").
type Signature struct {
	Name   string       `json:"name" yaml:"name"`
	Args   []param.Decl `json:"args,omitempty" yaml:"args,omitempty"`
	Result string       `json:"result,omitempty" yaml:"result,omitempty"`
}

// String renders the signature as a cache key, e.g.
// findByLastname(string last, Pageable) single.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString("(")
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Type)
		if a.Name != "" {
			b.WriteString(" ")
			b.WriteString(a.Name)
		}
	}
	b.WriteString(")")
	if s.Result != "" {
		b.WriteString(" ")
		b.WriteString(s.Result)
	}
	return b.String()
}

type cacheKey struct {
	entity    *metamodel.Entity
	signature string
}

// Engine registers and invokes operations. It is safe for concurrent use.
type Engine struct {
	exec     Executor
	parser   *parser.Parser
	compiler *querysql.Compiler
	logger   *slog.Logger

	mu  sync.Mutex // serializes cache publication
	ops atomic.Pointer[map[cacheKey]*Operation]
}

// Option configures an Engine.
type Option func(*Engine)

// WithDialect selects the SQL dialect. The default is SQLite.
func WithDialect(d querysql.Dialect) Option {
	return func(e *Engine) {
		e.compiler = querysql.NewCompiler(d)
	}
}

// WithPrefixes replaces the operation prefixes the parser recognises.
func WithPrefixes(prefixes ...string) Option {
	return func(e *Engine) {
		e.parser = parser.New(parser.WithPrefixes(prefixes...))
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine that runs queries on exec.
func New(exec Executor, opts ...Option) *Engine {
	e := &Engine{
		exec:     exec,
		parser:   parser.New(),
		compiler: querysql.NewCompiler(querysql.SQLite),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	empty := make(map[cacheKey]*Operation)
	e.ops.Store(&empty)
	return e
}

// Dialect returns the SQL dialect the engine compiles for.
func (e *Engine) Dialect() querysql.Dialect { return e.compiler.Dialect() }

// Register parses, classifies and compiles an operation for entity. A
// signature registered before returns the cached Operation.
func (e *Engine) Register(entity *metamodel.Entity, sig Signature) (*Operation, error) {
	if entity == nil {
		return nil, fmt.Errorf("register %s: nil entity", sig.Name)
	}
	key := cacheKey{entity: entity, signature: sig.String()}

	if op, ok := (*e.ops.Load())[key]; ok {
		e.logger.Debug("operation cache hit", "entity", entity.Name(), "signature", key.signature)
		return op, nil
	}

	op, err := e.build(entity, sig)
	if err != nil {
		e.logger.Warn("operation rejected",
			"entity", entity.Name(),
			"signature", key.signature,
			"error", err)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	current := *e.ops.Load()
	if existing, ok := current[key]; ok {
		return existing, nil
	}
	next := maps.Clone(current)
	next[key] = op
	e.ops.Store(&next)

	e.logger.Info("operation registered",
		"entity", entity.Name(),
		"signature", key.signature,
		"shape", op.shape,
		"sql", op.compiled.SQL)
	return op, nil
}

// MustRegister is like Register but panics on error.
func (e *Engine) MustRegister(entity *metamodel.Entity, sig Signature) *Operation {
	op, err := e.Register(entity, sig)
	if err != nil {
		panic(err)
	}
	return op
}

// Operations returns the number of cached operations.
func (e *Engine) Operations() int {
	return len(*e.ops.Load())
}

func (e *Engine) build(entity *metamodel.Entity, sig Signature) (*Operation, error) {
	fail := func(err error) (*Operation, error) {
		return nil, newError(entity.Name(), sig.Name, err)
	}

	parsed, err := e.parser.Parse(sig.Name, entity)
	if err != nil {
		return fail(err)
	}

	params, err := param.Build(sig.Args...)
	if err != nil {
		return fail(err)
	}

	if want, have := parsed.ArgCount(), params.BindableCount(); want != have {
		return fail(&param.ConfigError{
			Index:  -1,
			Reason: fmt.Sprintf("%s consumes %d arguments, %d bindable declared", sig.Name, want, have),
		})
	}

	shape, err := resultShape(parsed, sig.Result)
	if err != nil {
		return fail(err)
	}

	compiled, err := e.compiler.Compile(queryir.Select{
		From:   entity,
		Filter: parsed.Tree(),
		Sort:   parsed.Sort,
	}, params.Names())
	if err != nil {
		return fail(err)
	}

	return &Operation{
		entity:   entity,
		sig:      sig,
		parsed:   parsed,
		params:   params,
		compiled: compiled,
		shape:    shape,
	}, nil
}

// resultShape reconciles the declared result with the prefix family.
func resultShape(parsed *parser.ParsedOperation, result string) (parser.Shape, error) {
	declared, ok := parser.ParseShape(result)
	if !ok {
		return 0, &param.ConfigError{Index: -1, Reason: fmt.Sprintf("unknown result %q", result)}
	}
	if declared == parser.ShapeUnspecified {
		return parsed.Shape, nil
	}
	if (parsed.Shape == parser.ShapeCount) != (declared == parser.ShapeCount) {
		return 0, &param.ConfigError{
			Index:  -1,
			Reason: fmt.Sprintf("prefix %s returns %s, declared %s", parsed.Prefix, parsed.Shape, declared),
		}
	}
	return declared, nil
}
