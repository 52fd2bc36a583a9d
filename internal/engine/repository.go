package engine

import (
	"context"
	"fmt"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/specification"
	"github.com/ginhom/hades/internal/store"
)

// Mapper decodes one record into a T.
type Mapper[T any] func(store.Record) (T, error)

// Repository is a typed view of one entity.
type Repository[T any] struct {
	engine *Engine
	entity *metamodel.Entity
	mapper Mapper[T]
}

// NewRepository returns a Repository decoding entity rows with mapper.
func NewRepository[T any](e *Engine, entity *metamodel.Entity, mapper Mapper[T]) *Repository[T] {
	return &Repository[T]{engine: e, entity: entity, mapper: mapper}
}

// Entity returns the repository's entity.
func (r *Repository[T]) Entity() *metamodel.Entity { return r.entity }

// Register registers an operation on the repository's entity.
func (r *Repository[T]) Register(sig Signature) (*Operation, error) {
	return r.engine.Register(r.entity, sig)
}

// Find invokes a collection operation.
func (r *Repository[T]) Find(ctx context.Context, op *Operation, args ...any) ([]T, error) {
	res, err := r.invoke(ctx, op, parser.ShapeCollection, args)
	if err != nil {
		return nil, err
	}
	return r.mapAll(res.Records)
}

// FindPage invokes a collection operation declared with a Pageable. A nil
// Pageable value yields an unpaged page.
func (r *Repository[T]) FindPage(ctx context.Context, op *Operation, args ...any) (paging.Page[T], error) {
	res, err := r.invoke(ctx, op, parser.ShapeCollection, args)
	if err != nil {
		return paging.Page[T]{}, err
	}
	page := paging.Unpaged(res.Records)
	if res.Page != nil {
		page = *res.Page
	}
	return paging.MapPage[store.Record, T](page, r.mapper)
}

// FindOne invokes a single-shaped operation. ok is false when nothing
// matched.
func (r *Repository[T]) FindOne(ctx context.Context, op *Operation, args ...any) (v T, ok bool, err error) {
	res, err := r.invoke(ctx, op, parser.ShapeSingle, args)
	if err != nil || res.Record == nil {
		return v, false, err
	}
	v, err = r.mapper(res.Record)
	return v, err == nil, err
}

// CountBy invokes a count-shaped operation.
func (r *Repository[T]) CountBy(ctx context.Context, op *Operation, args ...any) (int64, error) {
	res, err := r.invoke(ctx, op, parser.ShapeCount, args)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

// FindAll returns the page of values matching spec.
func (r *Repository[T]) FindAll(ctx context.Context, spec specification.Spec, pageable *paging.PageRequest) (paging.Page[T], error) {
	page, err := r.engine.FindAll(ctx, r.entity, spec, pageable)
	if err != nil {
		return paging.Page[T]{}, err
	}
	return paging.MapPage[store.Record, T](page, r.mapper)
}

// FindAllSorted returns every value matching spec in sort order.
func (r *Repository[T]) FindAllSorted(ctx context.Context, spec specification.Spec, sort paging.Sort) ([]T, error) {
	recs, err := r.engine.FindAllSorted(ctx, r.entity, spec, sort)
	if err != nil {
		return nil, err
	}
	return r.mapAll(recs)
}

// Count returns the number of rows matching spec.
func (r *Repository[T]) Count(ctx context.Context, spec specification.Spec) (int64, error) {
	return r.engine.Count(ctx, r.entity, spec)
}

func (r *Repository[T]) invoke(ctx context.Context, op *Operation, want parser.Shape, args []any) (Result, error) {
	if op.entity != r.entity {
		return Result{}, fmt.Errorf("operation %s belongs to %s, not %s", op.Name(), op.entity.Name(), r.entity.Name())
	}
	if op.shape != want {
		return Result{}, fmt.Errorf("operation %s returns %s, not %s", op.Name(), op.shape, want)
	}
	return r.engine.Invoke(ctx, op, args...)
}

func (r *Repository[T]) mapAll(recs []store.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := r.mapper(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
