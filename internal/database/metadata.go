package database

import (
	"fmt"
	"sort"
)

// ColumnRow is one row of the bulk information_schema query
type ColumnRow struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	DataType string `json:"data_type"`
	Position int    `json:"position"`
}

// Column is a single column as presented to the model
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableMetadata maps a table name to its columns in ordinal order.
// Built fresh per request from the cached bulk rows, never mutated after.
type TableMetadata map[string][]Column

// ConnectivityError wraps failures reaching the metadata source so callers
// can tell them apart from absent data
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("metadata source unavailable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// GroupByTable filters the bulk rows down to the selected tables and groups
// them into TableMetadata. Rows arrive ordered by ordinal position, so the
// column order is preserved as-is.
func GroupByTable(rows []ColumnRow, tables []string) TableMetadata {
	selected := make(map[string]bool, len(tables))
	for _, table := range tables {
		selected[table] = true
	}

	metadata := make(TableMetadata, len(tables))
	for _, row := range rows {
		if !selected[row.Table] {
			continue
		}
		metadata[row.Table] = append(metadata[row.Table], Column{
			Name: row.Column,
			Type: row.DataType,
		})
	}

	return metadata
}

// TableNames returns the sorted distinct table names present in the bulk rows
func TableNames(rows []ColumnRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		if !seen[row.Table] {
			seen[row.Table] = true
			names = append(names, row.Table)
		}
	}

	sort.Strings(names)
	return names
}
