package querysql

import (
	"database/sql"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Dialect renders the target-specific parts of a query.
type Dialect interface {
	// Name identifies the dialect, e.g. "sqlite3".
	Name() string
	// Placeholder renders the n-th (1-based) positional placeholder.
	Placeholder(n int) string
	// NamedPlaceholder renders a placeholder bound by name.
	NamedPlaceholder(name string) string
	// Pattern renders a LIKE operand with optional leading and trailing
	// wildcards around a placeholder.
	Pattern(placeholder string, leading, trailing bool) string
	// Ident quotes a table or column name.
	Ident(name string) string
	// Bool renders a boolean constant.
	Bool(v bool) string
	// NamedArgs converts named values to driver arguments.
	NamedArgs(values map[string]any) []any
}

// SQLite is the dialect of github.com/mattn/go-sqlite3.
var SQLite Dialect = sqliteDialect{}

// Postgres is the dialect of github.com/jackc/pgx/v5.
var Postgres Dialect = postgresDialect{}

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite, true
	case "postgres", "pgx", "postgresql":
		return Postgres, true
	}
	return nil, false
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite3" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) NamedPlaceholder(name string) string { return ":" + name }

func (sqliteDialect) Pattern(p string, leading, trailing bool) string {
	return pattern(p, leading, trailing)
}

func (sqliteDialect) Ident(name string) string { return QuoteIdent(name) }

func (sqliteDialect) Bool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// NamedArgs returns sql.NamedArg values sorted by name.
func (sqliteDialect) NamedArgs(values map[string]any) []any {
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	slices.Sort(names)
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = sql.Named(n, values[n])
	}
	return args
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) NamedPlaceholder(name string) string { return "@" + name }

// Pattern casts the placeholder so the server can type the concatenation.
func (postgresDialect) Pattern(p string, leading, trailing bool) string {
	return pattern(p+"::text", leading, trailing)
}

func (postgresDialect) Ident(name string) string { return pgx.Identifier{name}.Sanitize() }

func (postgresDialect) Bool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// NamedArgs returns a single pgx.NamedArgs, which pgx rewrites to $n.
func (postgresDialect) NamedArgs(values map[string]any) []any {
	named := make(pgx.NamedArgs, len(values))
	for n, v := range values {
		named[n] = v
	}
	return []any{named}
}

// QuoteIdent wraps name in double quotes, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func pattern(p string, leading, trailing bool) string {
	out := p
	if leading {
		out = "'%' || " + out
	}
	if trailing {
		out += " || '%'"
	}
	return out
}
