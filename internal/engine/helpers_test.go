package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/paging"
	"github.com/ginhom/hades/internal/store"
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

var fixtureUsers = []map[string]any{
	{"id": "u1", "firstname": "Dave", "lastname": "Matthews", "age": 50, "active": true, "address.city": "Charlottesville"},
	{"id": "u2", "firstname": "Carter", "lastname": "Beauford", "age": 60, "active": true, "address.city": "Charlottesville"},
	{"id": "u3", "firstname": "Stefan", "lastname": "Lessard", "age": 49, "active": false, "address.city": "Richmond"},
	{"id": "u4", "firstname": "Dave", "lastname": "Grohl", "age": 55, "active": true, "address.city": "Seattle"},
	{"id": "u5", "firstname": "Oliver", "lastname": "Matthews", "age": 30, "active": false, "address.city": "Seattle"},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupEngine returns an engine over a fresh SQLite store seeded with
// fixtureUsers.
func setupEngine(t *testing.T, opts ...Option) (*Engine, *metamodel.Entity) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	e := userEntity()
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx, e))
	_, err = s.InsertAll(ctx, e, fixtureUsers...)
	require.NoError(t, err)

	return New(s, append([]Option{WithLogger(quietLogger())}, opts...)...), e
}

func ids(recs []store.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID()
	}
	return out
}

func pageRequest(page, size int, sort ...paging.Sort) *paging.PageRequest {
	return paging.MustPageRequest(page, size, sort...)
}

func sortBy(t *testing.T, expr string) paging.Sort {
	t.Helper()
	s, err := paging.ParseSort(expr)
	require.NoError(t, err)
	return s
}
