// Package db provides the record store the chat interpreter issues its
// queries against. The interpreter treats the store as an opaque capability:
// it hands over a query string with positional parameters and receives rows
// or an error, never inspecting connection state and never retrying.
package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Result holds the rows returned by a read query. Columns preserves the
// column order of the query so callers can render records field by field.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Store is the single seam between the interpreter and persistence.
type Store interface {
	// Select runs a read query and returns all rows.
	Select(ctx context.Context, query string, args ...any) (*Result, error)
	// Exec runs a mutation. Each call is an independently committed unit;
	// there are no multi-statement transactions behind this interface.
	Exec(ctx context.Context, query string, args ...any) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by a pgx connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Select(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *pgStore) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.pool.Exec(ctx, query, args...)
	return err
}
