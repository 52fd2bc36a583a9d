package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/querysql"
)

// InsertStatement builds an INSERT for values keyed by property path.
// d quotes names and renders placeholders. A missing or empty id is
// replaced by a new UUIDv7. Columns are emitted in declaration order.
func InsertStatement(e *metamodel.Entity, values map[string]any, d querysql.Dialect) (query string, args []any, id string, err error) {
	byColumn := make(map[string]any, len(values)+1)
	for path, v := range values {
		col, err := e.Column(path)
		if err != nil {
			return "", nil, "", fmt.Errorf("insert into %s: %w", e.Table(), err)
		}
		byColumn[col] = v
	}

	idCol, err := e.Column(metamodel.IDProperty)
	if err != nil {
		return "", nil, "", err
	}
	if v, ok := byColumn[idCol]; !ok || v == nil || v == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return "", nil, "", fmt.Errorf("generate id: %w", err)
		}
		byColumn[idCol] = u.String()
	}
	id = fmt.Sprint(byColumn[idCol])

	var cols, marks []string
	for _, c := range e.Columns() {
		v, ok := byColumn[c]
		if !ok {
			continue
		}
		cols = append(cols, d.Ident(c))
		args = append(args, v)
		marks = append(marks, d.Placeholder(len(args)))
	}

	query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Ident(e.Table()), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return query, args, id, nil
}

// Insert stores one record and returns its id. Values are keyed by
// property path, e.g. "address.city".
func (s *Store) Insert(ctx context.Context, e *metamodel.Entity, values map[string]any) (string, error) {
	query, args, id, err := InsertStatement(e, values, querysql.SQLite)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert into %s: %w", e.Table(), err)
	}
	return id, nil
}

// InsertAll stores records in one transaction and returns their ids in order.
func (s *Store) InsertAll(ctx context.Context, e *metamodel.Entity, records ...map[string]any) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(records))
	for _, values := range records {
		query, args, id, err := InsertStatement(e, values, querysql.SQLite)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", e.Table(), err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}
