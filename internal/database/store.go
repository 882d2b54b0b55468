package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
)

// Store reads column metadata for the active schema from Postgres
type Store struct {
	db     *sql.DB
	schema string
}

// Open connects to Postgres using the given DSN and verifies the connection
func Open(ctx context.Context, dsn, schema string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, &ConnectivityError{Err: fmt.Errorf("failed to open connection: %v", err)}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectivityError{Err: fmt.Errorf("failed to reach database: %v", err)}
	}

	return &Store{db: db, schema: schema}, nil
}

// NewStoreWithDB wraps an existing connection, used by tests
func NewStoreWithDB(db *sql.DB, schema string) *Store {
	return &Store{db: db, schema: schema}
}

// Schema returns the schema this store reads from
func (s *Store) Schema() string {
	return s.schema
}

// Close closes the underlying connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const bulkColumnQuery = `
	SELECT table_name, column_name, data_type, ordinal_position
	FROM information_schema.columns
	WHERE table_schema = $1
	ORDER BY table_name, ordinal_position`

// FetchAllColumns runs the single bulk metadata query for the active schema.
// The caller filters by table selection; there are no partial results, the
// query either returns the full set or fails.
func (s *Store) FetchAllColumns(ctx context.Context) ([]ColumnRow, error) {
	if s.db == nil {
		return nil, &ConnectivityError{Err: fmt.Errorf("database connection not established")}
	}

	rows, err := s.db.QueryContext(ctx, bulkColumnQuery, s.schema)
	if err != nil {
		return nil, &ConnectivityError{Err: fmt.Errorf("failed to query column metadata: %v", err)}
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnRow
	for rows.Next() {
		var row ColumnRow
		if err := rows.Scan(&row.Table, &row.Column, &row.DataType, &row.Position); err != nil {
			return nil, &ConnectivityError{Err: fmt.Errorf("failed to scan column metadata: %v", err)}
		}
		columns = append(columns, row)
	}

	if err := rows.Err(); err != nil {
		return nil, &ConnectivityError{Err: fmt.Errorf("error iterating column metadata: %v", err)}
	}

	return columns, nil
}
