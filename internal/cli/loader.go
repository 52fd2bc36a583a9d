package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ginhom/hades/internal/config"
	"github.com/ginhom/hades/internal/engine"
	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/querysql"
	"github.com/ginhom/hades/internal/schema"
	"github.com/ginhom/hades/internal/store"
	"github.com/ginhom/hades/internal/store/pgstore"
)

// backend is a record store the CLI can migrate, seed and query.
type backend interface {
	engine.Executor
	Migrate(ctx context.Context, entities ...*metamodel.Entity) error
	InsertAll(ctx context.Context, e *metamodel.Entity, records ...map[string]any) ([]string, error)
	Close() error
}

// openBackend opens the store named by the database settings.
func openBackend(ctx context.Context, db config.Database) (backend, error) {
	switch db.Driver {
	case config.DriverPostgres:
		slog.Debug("opening database", "driver", db.Driver)
		s, err := pgstore.Open(ctx, db.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		slog.Debug("opening database", "driver", db.Driver, "path", db.Path)
		s, err := store.Open(db.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", db.Driver)
	}
}

// newEngine builds an engine for the configured driver and prefixes. exec
// may be nil for commands that only compile.
func newEngine(cfg config.Config, exec engine.Executor) (*engine.Engine, error) {
	d, ok := querysql.DialectFor(cfg.Database.Driver)
	if !ok {
		return nil, fmt.Errorf("no SQL dialect for driver %q", cfg.Database.Driver)
	}
	return engine.New(exec,
		engine.WithDialect(d),
		engine.WithPrefixes(cfg.Parser.Prefixes...),
		engine.WithLogger(slog.Default()),
	), nil
}

// loadSchema loads dir and reports schema errors through f.
func loadSchema(f *OutputFormatter, dir string) (*schema.Schema, error) {
	s, errs := schema.Load(dir)
	if len(errs) > 0 {
		_ = f.Errors(fmt.Sprintf("Schema %s has %d error(s)", dir, len(errs)), toCLIErrors(errs))
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("schema failed with %d error(s)", len(errs)))
	}
	f.VerboseLog("Loaded %d CUE file(s) from %s", s.FileCount, dir)
	return s, nil
}

func toCLIErrors(errs []error) []CLIError {
	out := make([]CLIError, len(errs))
	for i, err := range errs {
		out[i] = toCLIError(err)
	}
	return out
}

func toCLIError(err error) CLIError {
	var se *schema.Error
	if errors.As(err, &se) {
		return CLIError{Code: se.Code, Message: se.Error()}
	}
	var ee *engine.Error
	if errors.As(err, &ee) {
		return CLIError{Code: string(ee.Code), Message: err.Error()}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}
