// Package pgstore is a PostgreSQL record store built on pgx.
//
// Queries use the Postgres dialect of querysql: positional $n placeholders
// or pgx.NamedArgs for named arguments.
package pgstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/querysql"
	"github.com/ginhom/hades/internal/store"
)

// Types maps property kinds to PostgreSQL column types.
var Types = store.ColumnTypes{
	metamodel.KindString: "TEXT",
	metamodel.KindInt:    "BIGINT",
	metamodel.KindBool:   "BOOLEAN",
	metamodel.KindFloat:  "DOUBLE PRECISION",
	metamodel.KindTime:   "TIMESTAMPTZ",
}

// Store is a record store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate creates the table of each entity if it does not exist.
func (s *Store) Migrate(ctx context.Context, entities ...*metamodel.Entity) error {
	for _, e := range entities {
		if _, err := s.pool.Exec(ctx, store.CreateTableSQL(e, querysql.Postgres, Types)); err != nil {
			return fmt.Errorf("migrate %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Insert stores one record and returns its id.
func (s *Store) Insert(ctx context.Context, e *metamodel.Entity, values map[string]any) (string, error) {
	query, args, id, err := store.InsertStatement(e, values, querysql.Postgres)
	if err != nil {
		return "", err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert into %s: %w", e.Table(), err)
	}
	return id, nil
}

// InsertAll stores records in one transaction.
func (s *Store) InsertAll(ctx context.Context, e *metamodel.Entity, records ...map[string]any) ([]string, error) {
	ids := make([]string, 0, len(records))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, values := range records {
			query, args, id, err := store.InsertStatement(e, values, querysql.Postgres)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("insert into %s: %w", e.Table(), err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Query runs a SELECT and returns every row as a store.Record.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]store.Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := []store.Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := make(store.Record, len(fields))
		for i, f := range fields {
			rec[f.Name] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Count runs a single-value COUNT query.
func (s *Store) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DropTables removes the tables of entities. Used by tests against a
// shared database.
func (s *Store) DropTables(ctx context.Context, entities ...*metamodel.Entity) error {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = querysql.Postgres.Ident(e.Table())
	}
	if len(names) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+strings.Join(names, ", "))
	return err
}
