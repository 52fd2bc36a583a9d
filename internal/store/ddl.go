package store

import (
	"strings"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/querysql"
)

// ColumnTypes maps property kinds to column types of one database.
type ColumnTypes map[metamodel.Kind]string

// SQLiteTypes uses declared types that go-sqlite3 converts back to bool
// and time.Time on read.
var SQLiteTypes = ColumnTypes{
	metamodel.KindString: "TEXT",
	metamodel.KindInt:    "INTEGER",
	metamodel.KindBool:   "BOOLEAN",
	metamodel.KindFloat:  "REAL",
	metamodel.KindTime:   "TIMESTAMP",
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for e.
// Names are quoted by d. The id column is the primary key.
func CreateTableSQL(e *metamodel.Entity, d querysql.Dialect, types ColumnTypes) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(d.Ident(e.Table()))
	b.WriteString(" (")
	for i, p := range e.Leaves() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Ident(p.Column))
		b.WriteString(" ")
		b.WriteString(types[p.Kind])
		if p.Path == metamodel.IDProperty {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString(")")
	return b.String()
}
