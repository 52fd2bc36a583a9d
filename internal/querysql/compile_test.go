package querysql

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/parser"
	"github.com/ginhom/hades/internal/queryir"
)

func userEntity() *metamodel.Entity {
	return metamodel.MustEntity("User", "users",
		metamodel.Field("firstname", metamodel.KindString),
		metamodel.Field("lastname", metamodel.KindString),
		metamodel.Field("age", metamodel.KindInt),
		metamodel.Field("active", metamodel.KindBool),
		metamodel.Embedded("address",
			metamodel.Field("city", metamodel.KindString),
		),
	)
}

func compileOp(t *testing.T, c *Compiler, identifier string, names []string) *Compiled {
	t.Helper()
	e := userEntity()
	op, err := parser.Parse(identifier, e)
	require.NoError(t, err)

	compiled, err := c.Compile(queryir.Select{From: e, Filter: op.Tree(), Sort: op.Sort}, names)
	require.NoError(t, err)
	return compiled
}

func TestCompile_Golden(t *testing.T) {
	testCases := []struct {
		name       string
		dialect    Dialect
		identifier string
		names      []string
	}{
		{name: "sqlite_or_like_order", dialect: SQLite, identifier: "findByLastnameOrFirstnameLikeOrderByFirstnameDesc"},
		{name: "sqlite_left_to_right", dialect: SQLite, identifier: "findByFirstnameOrLastnameAndAgeGreaterThan"},
		{name: "sqlite_nested_null", dialect: SQLite, identifier: "findByAddressCityIsNullAndActiveIsTrue"},
		{name: "sqlite_select_all", dialect: SQLite, identifier: "findBy"},
		{name: "sqlite_named", dialect: SQLite, identifier: "findByLastnameAndFirstnameStartingWith", names: []string{"last", "first"}},
		{name: "postgres_or_like_order", dialect: Postgres, identifier: "findByLastnameOrFirstnameLikeOrderByFirstnameDesc"},
		{name: "postgres_containing", dialect: Postgres, identifier: "findByFirstnameContainingAndActiveFalse"},
		{name: "postgres_named", dialect: Postgres, identifier: "findByLastnameAndFirstnameStartingWith", names: []string{"last", "first"}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			compiled := compileOp(t, NewCompiler(tc.dialect), tc.identifier, tc.names)
			g.Assert(t, tc.name, []byte(compiled.SQL+"\n"+compiled.CountSQL+"\n"))
		})
	}
}

func TestCompile_SingleLeafHasNoParentheses(t *testing.T) {
	compiled := compileOp(t, NewCompiler(nil), "findByLastname", nil)

	assert.Equal(t, `SELECT "id", "firstname", "lastname", "age", "active", "address_city" FROM "users" WHERE "lastname" = ?`, compiled.SQL)
	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE "lastname" = ?`, compiled.CountSQL)
	assert.False(t, compiled.Sorted())
	assert.Equal(t, 1, compiled.Placeholders())
}

func TestCompile_CountNeverOrders(t *testing.T) {
	compiled := compileOp(t, NewCompiler(SQLite), "findByAgeOrderByLastnameAsc", nil)

	assert.True(t, compiled.Sorted())
	assert.Contains(t, compiled.SQL, `ORDER BY "lastname" ASC`)
	assert.NotContains(t, compiled.CountSQL, "ORDER BY")
}

func TestCompile_LiteralsAreParameterized(t *testing.T) {
	e := userEntity()
	tree := queryir.OrOf(
		queryir.ValueLeaf("lastname", queryir.Equal, "O'Brien"),
		queryir.NotOf(queryir.ValueLeaf("age", queryir.LessThan, 18)),
	)

	compiled, err := NewCompiler(SQLite).Compile(queryir.Select{From: e, Filter: tree}, nil)
	require.NoError(t, err)

	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE ("lastname" = ? OR NOT ("age" < ?))`, compiled.CountSQL)
	assert.NotContains(t, compiled.SQL, "O'Brien")
	assert.Equal(t, []any{"O'Brien", 18}, compiled.Literals)

	args, err := compiled.Args(param.Bound{})
	require.NoError(t, err)
	assert.Equal(t, []any{"O'Brien", 18}, args)
}

func TestCompile_NotOfBinary(t *testing.T) {
	e := userEntity()
	tree := queryir.NotOf(queryir.AndOf(
		queryir.ValueLeaf("lastname", queryir.Equal, "a"),
		queryir.ValueLeaf("firstname", queryir.Equal, "b"),
	))

	compiled, err := NewCompiler(SQLite).Compile(queryir.Select{From: e, Filter: tree}, nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE NOT ("lastname" = ? AND "firstname" = ?)`, compiled.CountSQL)
}

func TestCompile_NilLiteralComparesNull(t *testing.T) {
	e := userEntity()
	tree := queryir.AndOf(
		queryir.ValueLeaf("lastname", queryir.Equal, nil),
		queryir.ValueLeaf("firstname", queryir.NotEqual, nil),
	)

	compiled, err := NewCompiler(SQLite).Compile(queryir.Select{From: e, Filter: tree}, nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE ("lastname" IS NULL AND "firstname" IS NOT NULL)`, compiled.CountSQL)
	assert.Empty(t, compiled.Literals)
}

func TestCompile_ArgsFollowPlaceholders(t *testing.T) {
	e := userEntity()
	// Arguments referenced out of order still bind to the right placeholder.
	tree := queryir.AndOf(
		queryir.ArgLeaf("firstname", queryir.Equal, 1),
		queryir.AndOf(
			queryir.ValueLeaf("active", queryir.Equal, true),
			queryir.ArgLeaf("lastname", queryir.Equal, 0),
		),
	)

	for _, d := range []Dialect{SQLite, Postgres} {
		compiled, err := NewCompiler(d).Compile(queryir.Select{From: e, Filter: tree}, nil)
		require.NoError(t, err)

		args, err := compiled.Args(param.Bound{Args: []any{"Matthews", "Dave"}})
		require.NoError(t, err)
		assert.Equal(t, []any{"Dave", true, "Matthews"}, args, d.Name())
	}
}

func TestCompile_PostgresNumbersPlaceholders(t *testing.T) {
	compiled := compileOp(t, NewCompiler(Postgres), "findByLastnameAndAgeLessThanEqual", nil)

	assert.Contains(t, compiled.SQL, `WHERE ("lastname" = $1 AND "age" <= $2)`)
}

func TestCompile_QuotesReservedNames(t *testing.T) {
	e := metamodel.MustEntity("Order", "",
		metamodel.Field("order", metamodel.KindInt),
		metamodel.Field("group", metamodel.KindString),
	)
	sel := queryir.Select{
		From:   e,
		Filter: queryir.ArgLeaf("group", queryir.Equal, 0),
		Sort:   paging.MustBy(paging.Descending("order")),
	}

	compiled, err := NewCompiler(SQLite).Compile(sel, nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "order", "group" FROM "order" WHERE "group" = ? ORDER BY "order" DESC`, compiled.SQL)
	assert.Equal(t, `SELECT COUNT(*) FROM "order" WHERE "group" = ?`, compiled.CountSQL)

	compiled, err = NewCompiler(Postgres).Compile(sel, nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "order", "group" FROM "order" WHERE "group" = $1 ORDER BY "order" DESC`, compiled.SQL)
}

func TestDialect_Ident(t *testing.T) {
	for _, d := range []Dialect{SQLite, Postgres} {
		assert.Equal(t, `"limit"`, d.Ident("limit"), d.Name())
		assert.Equal(t, `"we""ird"`, d.Ident(`we"ird`), d.Name())
	}
}

func TestCompile_NamedArgs(t *testing.T) {
	bound := param.Bound{Named: map[string]any{"last": "Matthews", "first": "Da"}}

	sqlite := compileOp(t, NewCompiler(SQLite), "findByLastnameAndFirstnameStartingWith", []string{"last", "first"})
	args, err := sqlite.Args(bound)
	require.NoError(t, err)
	assert.Equal(t, []any{sql.Named("first", "Da"), sql.Named("last", "Matthews")}, args)

	pg := compileOp(t, NewCompiler(Postgres), "findByLastnameAndFirstnameStartingWith", []string{"last", "first"})
	args, err = pg.Args(bound)
	require.NoError(t, err)
	assert.Equal(t, []any{pgx.NamedArgs{"last": "Matthews", "first": "Da"}}, args)
}

func TestCompile_RejectsNamedWithLiterals(t *testing.T) {
	e := userEntity()
	tree := queryir.AndOf(
		queryir.ArgLeaf("lastname", queryir.Equal, 0),
		queryir.ValueLeaf("age", queryir.Equal, 3),
	)

	_, err := NewCompiler(SQLite).Compile(queryir.Select{From: e, Filter: tree}, []string{"last"})
	assert.ErrorIs(t, err, ErrNamedLiteral)
}

func TestCompile_UnknownProperty(t *testing.T) {
	e := userEntity()

	_, err := NewCompiler(SQLite).Compile(queryir.Select{
		From:   e,
		Filter: queryir.ValueLeaf("nickname", queryir.Equal, "x"),
	}, nil)
	assert.ErrorIs(t, err, metamodel.ErrUnknownProperty)

	_, err = NewCompiler(SQLite).Compile(queryir.Select{
		From: e,
		Sort: paging.MustBy(paging.Ascending("shoeSize")),
	}, nil)
	assert.ErrorIs(t, err, metamodel.ErrUnknownProperty)
}

func TestCompile_Deterministic(t *testing.T) {
	c := NewCompiler(SQLite)
	first := compileOp(t, c, "findByLastnameOrFirstnameLikeOrderByFirstnameDesc", nil)
	second := compileOp(t, c, "findByLastnameOrFirstnameLikeOrderByFirstnameDesc", nil)

	assert.Equal(t, first.SQL, second.SQL)
	assert.Equal(t, first.CountSQL, second.CountSQL)
}

func TestArgs_MissingArgument(t *testing.T) {
	compiled := compileOp(t, NewCompiler(SQLite), "findByLastnameAndFirstname", nil)

	_, err := compiled.Args(param.Bound{Args: []any{"only one"}})
	assert.ErrorIs(t, err, param.ErrArgumentCountMismatch)
}

func TestDialectFor(t *testing.T) {
	d, ok := DialectFor("sqlite3")
	assert.True(t, ok)
	assert.Equal(t, "sqlite3", d.Name())

	d, ok = DialectFor("pgx")
	assert.True(t, ok)
	assert.Equal(t, "postgres", d.Name())

	_, ok = DialectFor("oracle")
	assert.False(t, ok)
}
