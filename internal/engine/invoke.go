package engine

import (
	"context"
	"fmt"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/querysql"
	"github.com/ginhom/hades/internal/queryir"
	"github.com/ginhom/hades/internal/specification"
	"github.com/ginhom/hades/internal/store"
)

// Result is the outcome of one invocation. Which fields are set depends on
// Shape.
type Result struct {
	Shape parser.Shape

	// Records holds the rows of a collection, or of the current page.
	Records []store.Record

	// Page is set for collections invoked with a non-nil Pageable.
	Page *paging.Page[store.Record]

	// Record is the first row of a single-shaped operation, nil when
	// nothing matched.
	Record store.Record

	// Count is set for count-shaped operations.
	Count int64
}

// Invoke runs op with call-time values, one per declared argument.
func (e *Engine) Invoke(ctx context.Context, op *Operation, args ...any) (Result, error) {
	binder, err := param.NewBinder(op.params, args...)
	if err != nil {
		return Result{}, newError(op.entity.Name(), op.sig.Name, err)
	}
	bound := binder.BindAndPrepare(op.compiled.SQL)
	driverArgs, err := op.compiled.Args(bound)
	if err != nil {
		return Result{}, newError(op.entity.Name(), op.sig.Name, err)
	}

	res := Result{Shape: op.shape}
	switch op.shape {
	case parser.ShapeCount:
		e.logger.Debug("invoke", "operation", op.sig.Name, "sql", op.compiled.CountSQL)
		res.Count, err = e.exec.Count(ctx, op.compiled.CountSQL, driverArgs...)
		return res, err

	case parser.ShapeSingle:
		window := bound.Window
		if window == nil {
			window = &param.Window{Offset: 0, Limit: 1}
		}
		rows, err := e.query(ctx, op.compiled, bound.Sort, window, driverArgs)
		if err != nil {
			return Result{}, err
		}
		if len(rows) > 0 {
			res.Record = rows[0]
		}
		return res, nil

	default:
		rows, err := e.query(ctx, op.compiled, bound.Sort, bound.Window, driverArgs)
		if err != nil {
			return Result{}, err
		}
		res.Records = rows
		if bound.Pageable != nil {
			total, err := e.total(ctx, op.compiled.CountSQL, bound.Pageable, len(rows), driverArgs)
			if err != nil {
				return Result{}, err
			}
			page := paging.NewPage(rows, bound.Pageable, total)
			res.Page = &page
		}
		return res, nil
	}
}

// FindAll returns the page of entity rows matching spec. A nil pageable
// returns every match as a single unpaged page.
func (e *Engine) FindAll(ctx context.Context, entity *metamodel.Entity, spec specification.Spec, pageable *paging.PageRequest) (paging.Page[store.Record], error) {
	compiled, err := e.CompileSpec(entity, spec)
	if err != nil {
		return paging.Page[store.Record]{}, err
	}
	args, err := compiled.Args(param.Bound{})
	if err != nil {
		return paging.Page[store.Record]{}, newError(entity.Name(), "", err)
	}

	if pageable == nil {
		rows, err := e.query(ctx, compiled, paging.Sort{}, nil, args)
		if err != nil {
			return paging.Page[store.Record]{}, err
		}
		return paging.Unpaged(rows), nil
	}

	window := &param.Window{Offset: pageable.Offset(), Limit: pageable.Limit()}
	rows, err := e.query(ctx, compiled, pageable.Sort(), window, args)
	if err != nil {
		return paging.Page[store.Record]{}, err
	}
	total, err := e.total(ctx, compiled.CountSQL, pageable, len(rows), args)
	if err != nil {
		return paging.Page[store.Record]{}, err
	}
	return paging.NewPage(rows, pageable, total), nil
}

// FindAllSorted returns every entity row matching spec in sort order.
func (e *Engine) FindAllSorted(ctx context.Context, entity *metamodel.Entity, spec specification.Spec, sort paging.Sort) ([]store.Record, error) {
	compiled, err := e.CompileSpec(entity, spec)
	if err != nil {
		return nil, err
	}
	args, err := compiled.Args(param.Bound{})
	if err != nil {
		return nil, newError(entity.Name(), "", err)
	}
	return e.query(ctx, compiled, sort, nil, args)
}

// Count returns the number of entity rows matching spec.
func (e *Engine) Count(ctx context.Context, entity *metamodel.Entity, spec specification.Spec) (int64, error) {
	compiled, err := e.CompileSpec(entity, spec)
	if err != nil {
		return 0, err
	}
	args, err := compiled.Args(param.Bound{})
	if err != nil {
		return 0, newError(entity.Name(), "", err)
	}
	e.logger.Debug("count", "entity", entity.Name(), "sql", compiled.CountSQL)
	return e.exec.Count(ctx, compiled.CountSQL, args...)
}

// CompileSpec compiles spec against entity without running it.
func (e *Engine) CompileSpec(entity *metamodel.Entity, spec specification.Spec) (*querysql.Compiled, error) {
	if entity == nil {
		return nil, fmt.Errorf("compile %s: nil entity", spec)
	}
	compiled, err := e.compiler.Compile(queryir.Select{From: entity, Filter: spec.Tree()}, nil)
	if err != nil {
		return nil, newError(entity.Name(), "", err)
	}
	return compiled, nil
}

// query applies the runtime sort (only when nothing was sorted at compile
// time) and the window, then runs the query.
func (e *Engine) query(ctx context.Context, c *querysql.Compiled, sort paging.Sort, window *param.Window, args []any) ([]store.Record, error) {
	sql := c.SQL
	if !c.Sorted() {
		var err error
		sql, err = querysql.ApplySort(sql, e.compiler.Dialect(), c.Entity(), sort)
		if err != nil {
			return nil, newError(c.Entity().Name(), "", err)
		}
	}
	sql = querysql.ApplyWindow(sql, window)

	e.logger.Debug("query", "entity", c.Entity().Name(), "sql", sql, "args", len(args))
	return e.exec.Query(ctx, sql, args...)
}

// total derives the match count. A short page already tells the total, so
// the count query runs only for full pages and for empty pages past the
// first.
func (e *Engine) total(ctx context.Context, countSQL string, pr *paging.PageRequest, fetched int, args []any) (int64, error) {
	if fetched < pr.Limit() && (fetched > 0 || pr.Offset() == 0) {
		return int64(pr.Offset() + fetched), nil
	}
	return e.exec.Count(ctx, countSQL, args...)
}
