package store

import (
	"path/filepath"
	"testing"

	"github.com/ginhom/hades/internal/metamodel"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

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
