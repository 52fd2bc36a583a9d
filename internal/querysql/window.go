package querysql

import (
	"strconv"
	"strings"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
	"github.com/ginhom/hades/internal/paging"
)

// ApplySort appends an ORDER BY clause for s to query. A zero sort leaves
// the query unchanged. Properties resolve to columns through entity and
// are quoted by d.
func ApplySort(query string, d Dialect, entity *metamodel.Entity, s paging.Sort) (string, error) {
	if s.IsZero() {
		return query, nil
	}
	parts := make([]string, 0, s.Len())
	for o := range s.All() {
		col, err := entity.Column(o.Property)
		if err != nil {
			return "", err
		}
		parts = append(parts, d.Ident(col)+" "+o.Direction.String())
	}
	return query + " ORDER BY " + strings.Join(parts, ", "), nil
}

// ApplyWindow appends LIMIT and OFFSET for w. A nil window leaves the
// query unchanged.
func ApplyWindow(query string, w *param.Window) string {
	if w == nil {
		return query
	}
	return query + " LIMIT " + strconv.Itoa(w.Limit) + " OFFSET " + strconv.Itoa(w.Offset)
}
