package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginhom/hades/internal/engine"
	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Page    int
	Size    int
	Sort    string
	Migrate bool
}

// QueryResult is the output of query.
type QueryResult struct {
	Operation string         `json:"operation"`
	Records   []store.Record `json:"records"`
	Total     *int64         `json:"total,omitempty"`
	Count     *int64         `json:"count,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <schema-dir> <entity> <operation> [args...]",
		Short: "Run a declared operation against the configured database",
		Long: `Run one repository operation declared in the schema. Positional args
fill the operation's value parameters in order and are converted by their
declared type. A Pageable parameter is filled from --page/--size/--sort and
a Sort parameter from --sort.

Example:
  hades query ./schema User findByLastnameOrderByAgeAsc Matthews
  hades query ./schema User findByAddressCity Seattle --size 10 --sort age:desc`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number for a Pageable parameter")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "page size; 0 passes no Pageable")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort, e.g. lastname,age:desc")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "create missing entity tables first")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	dir, entityName, opName, values := args[0], args[1], args[2], args[3:]

	s, err := loadSchema(f, dir)
	if err != nil {
		return err
	}
	entity := s.Entity(entityName)
	repo, ok := s.Repository(entityName)
	if entity == nil || !ok {
		msg := fmt.Sprintf("no repository declared for %q", entityName)
		_ = f.Error(ErrCodeArgument, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	i := slices.IndexFunc(repo.Operations, func(sig engine.Signature) bool { return sig.Name == opName })
	if i < 0 {
		msg := fmt.Sprintf("operation %s is not declared for %s", opName, entityName)
		_ = f.Error(ErrCodeArgument, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	db, err := openBackend(ctx, opts.Config.Database)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer db.Close()

	if opts.Migrate {
		if err := db.Migrate(ctx, s.Entities...); err != nil {
			_ = f.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to migrate", err)
		}
	}

	eng, err := newEngine(opts.Config, db)
	if err != nil {
		_ = f.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid driver", err)
	}
	op, err := eng.Register(entity, repo.Operations[i])
	if err != nil {
		ce := toCLIError(err)
		_ = f.Error(ce.Code, ce.Message, nil)
		return WrapExitError(ExitCommandError, "invalid operation", err)
	}

	callArgs, err := opts.callArgs(op.Parameters(), values)
	if err != nil {
		_ = f.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	res, err := eng.Invoke(ctx, op, callArgs...)
	if err != nil {
		ce := toCLIError(err)
		if engine.CodeOf(err) == "" {
			ce.Code = ErrCodeDatabase
		}
		_ = f.Error(ce.Code, ce.Message, nil)
		return WrapExitError(ExitCommandError, "query failed", err)
	}

	out := QueryResult{Operation: op.Signature().String(), Records: []store.Record{}}
	switch res.Shape {
	case parser.ShapeCount:
		out.Count = &res.Count
	case parser.ShapeSingle:
		if res.Record != nil {
			out.Records = append(out.Records, res.Record)
		}
	default:
		out.Records = append(out.Records, res.Records...)
		if res.Page != nil {
			total := res.Page.TotalElements()
			out.Total = &total
		}
	}

	if f.Format == "json" {
		return f.Success(out)
	}
	return printRecords(f.Writer, entity, out)
}

// callArgs converts positional values by declared type and fills the
// special slots from flags.
func (o *QueryOptions) callArgs(params *param.Parameters, values []string) ([]any, error) {
	if len(values) != params.BindableCount() {
		return nil, fmt.Errorf("%w: operation takes %d value(s), got %d",
			param.ErrArgumentCountMismatch, params.BindableCount(), len(values))
	}

	var sort paging.Sort
	if o.Sort != "" {
		s, err := paging.ParseSort(o.Sort)
		if err != nil {
			return nil, err
		}
		sort = s
	}

	args := make([]any, params.Len())
	next := 0
	for i, p := range params.All() {
		switch p.Type() {
		case param.TypePageable:
			if o.Size > 0 {
				pr, err := paging.NewPageRequest(o.Page, o.Size, sort)
				if err != nil {
					return nil, err
				}
				args[i] = pr
			}
		case param.TypeSort:
			args[i] = sort
		default:
			v, err := convertValue(p.Type(), values[next])
			if err != nil {
				return nil, fmt.Errorf("argument %d (%s): %w", next, p, err)
			}
			args[i] = v
			next++
		}
	}
	return args, nil
}

// convertValue parses raw as the declared type tag. Unknown tags stay
// strings.
func convertValue(typ, raw string) (any, error) {
	switch strings.ToLower(typ) {
	case "int", "int64", "long", "integer":
		return strconv.ParseInt(raw, 10, 64)
	case "float", "float64", "double":
		return strconv.ParseFloat(raw, 64)
	case "bool", "boolean":
		return strconv.ParseBool(raw)
	case "time":
		return time.Parse(time.RFC3339, raw)
	default:
		return raw, nil
	}
}

func printRecords(w io.Writer, entity *metamodel.Entity, out QueryResult) error {
	if out.Count != nil {
		_, err := fmt.Fprintf(w, "%d\n", *out.Count)
		return err
	}

	cols := entity.Columns()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, r := range out.Records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := r[c]; ok && v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d record(s)", len(out.Records))
	if out.Total != nil {
		fmt.Fprintf(w, " of %d", *out.Total)
	}
	fmt.Fprintln(w)
	return nil
}
