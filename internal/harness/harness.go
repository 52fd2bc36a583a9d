package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ginhom/hades/internal/engine"
	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/schema"
	"github.com/ginhom/hades/internal/store"
)

// Harness executes the steps of one scenario.
type Harness struct {
	schema *schema.Schema
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for step progress. Runs are silent by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Run executes a scenario against a fresh in-memory SQLite store.
//
// The returned error covers problems with the scenario itself (schema,
// fixtures, undeclared operations). Engine errors raised by a step are
// recorded in its trace and checked against the step's expectations.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	sch, errs := schema.Load(sc.Schema)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load schema: %w", errors.Join(errs...))
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx, sch.Entities...); err != nil {
		return nil, err
	}
	if err := seed(ctx, st, sch, sc.Fixtures); err != nil {
		return nil, err
	}

	h := &Harness{
		schema: sch,
		engine: engine.New(st, engine.WithLogger(o.logger)),
		logger: o.logger,
	}

	result := NewResult()
	for i, step := range sc.Steps {
		tr, err := h.execute(ctx, i, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.Trace = append(result.Trace, tr)

		for _, msg := range checkExpect(tr, step.Expect) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, describe(step), msg))
		}

		h.logger.Info("step completed",
			"step", i,
			"entity", step.Entity,
			"op", describe(step),
			"rows", len(tr.IDs),
			"error", tr.Error,
		)
	}
	return result, nil
}

// seed inserts fixtures in entity-name order.
func seed(ctx context.Context, st *store.Store, sch *schema.Schema, fixtures map[string][]map[string]any) error {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		e := sch.Entity(name)
		if e == nil {
			return fmt.Errorf("fixtures: no entity named %q", name)
		}
		if _, err := st.InsertAll(ctx, e, fixtures[name]...); err != nil {
			return fmt.Errorf("fixtures for %s: %w", name, err)
		}
	}
	return nil
}

func (h *Harness) execute(ctx context.Context, i int, step Step) (StepTrace, error) {
	e := h.schema.Entity(step.Entity)
	if e == nil {
		return StepTrace{}, fmt.Errorf("no entity named %q", step.Entity)
	}
	tr := StepTrace{Step: i, Entity: e.Name(), Op: step.Op, IDs: []string{}}

	if step.Op != "" {
		return tr, h.invoke(ctx, &tr, e, step)
	}
	return tr, h.findAll(ctx, &tr, e, step)
}

func (h *Harness) invoke(ctx context.Context, tr *StepTrace, e *metamodel.Entity, step Step) error {
	repo, ok := h.schema.Repository(e.Name())
	if !ok {
		return fmt.Errorf("no repository declared for %s", e.Name())
	}
	i := slices.IndexFunc(repo.Operations, func(s engine.Signature) bool { return s.Name == step.Op })
	if i < 0 {
		return fmt.Errorf("operation %s is not declared for %s", step.Op, e.Name())
	}

	op, err := h.engine.Register(e, repo.Operations[i])
	if err != nil {
		tr.Error = errorCode(err)
		return nil
	}
	tr.SQL = op.Compiled().SQL

	args, err := convertArgs(op.Parameters(), step.Args)
	if err != nil {
		return err
	}

	res, err := h.engine.Invoke(ctx, op, args...)
	if err != nil {
		tr.Error = errorCode(err)
		return nil
	}

	switch res.Shape {
	case parser.ShapeCount:
		n := res.Count
		tr.Count = &n
	case parser.ShapeSingle:
		if res.Record != nil {
			tr.setRecords([]store.Record{res.Record})
		}
	default:
		tr.setRecords(res.Records)
		if res.Page != nil {
			total := res.Page.TotalElements()
			tr.Total = &total
		}
	}
	return nil
}

func (h *Harness) findAll(ctx context.Context, tr *StepTrace, e *metamodel.Entity, step Step) error {
	spec, err := step.Where.Spec()
	if err != nil {
		return err
	}

	compiled, err := h.engine.CompileSpec(e, spec)
	if err != nil {
		tr.Error = errorCode(err)
		return nil
	}
	tr.SQL = compiled.SQL

	switch {
	case step.Count:
		n, err := h.engine.Count(ctx, e, spec)
		if err != nil {
			tr.Error = errorCode(err)
			return nil
		}
		tr.Count = &n
	case step.Sort != "":
		sort, err := paging.ParseSort(step.Sort)
		if err != nil {
			return err
		}
		recs, err := h.engine.FindAllSorted(ctx, e, spec, sort)
		if err != nil {
			tr.Error = errorCode(err)
			return nil
		}
		tr.setRecords(recs)
	default:
		pr, err := step.Page.request()
		if err != nil {
			return err
		}
		page, err := h.engine.FindAll(ctx, e, spec, pr)
		if err != nil {
			tr.Error = errorCode(err)
			return nil
		}
		tr.setRecords(page.Content())
		if pr != nil {
			total := page.TotalElements()
			tr.Total = &total
		}
	}
	return nil
}

func (t *StepTrace) setRecords(recs []store.Record) {
	t.records = recs
	t.IDs = make([]string, len(recs))
	for i, r := range recs {
		t.IDs[i] = r.ID()
	}
}

// errorCode names err by its engine code; storage errors have none.
func errorCode(err error) string {
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	return "STORAGE"
}

func (p *PageArg) request() (*paging.PageRequest, error) {
	if p == nil {
		return nil, nil
	}
	var sorts []paging.Sort
	if p.Sort != "" {
		s, err := paging.ParseSort(p.Sort)
		if err != nil {
			return nil, err
		}
		sorts = append(sorts, s)
	}
	return paging.NewPageRequest(p.Page, p.Size, sorts...)
}

// convertArgs turns YAML values into call arguments. Special parameter
// slots are converted to paging values; extra or missing values are passed
// through so the binder reports the mismatch.
func convertArgs(params *param.Parameters, raw []any) ([]any, error) {
	args := make([]any, len(raw))
	for i, v := range raw {
		args[i] = v
		if i >= params.Len() || v == nil {
			continue
		}
		switch params.At(i).Type() {
		case param.TypePageable:
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			pa := PageArg{Page: toInt(m["page"]), Size: toInt(m["size"])}
			if s, ok := m["sort"].(string); ok {
				pa.Sort = s
			}
			pr, err := pa.request()
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			args[i] = pr
		case param.TypeSort:
			s, ok := v.(string)
			if !ok {
				continue
			}
			sort, err := paging.ParseSort(s)
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			args[i] = sort
		}
	}
	return args, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func describe(step Step) string {
	if step.Op != "" {
		return step.Op
	}
	switch {
	case step.Count:
		return "count"
	case step.Sort != "":
		return "findAllSorted"
	default:
		return "findAll"
	}
}
