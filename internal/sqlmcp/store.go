// Package sqlmcp implements the MCP database server for the customer support
// dataset. It exposes SQLite over five stdio tools (read_data, insert_data,
// update_data, create_table, describe_table); the agent process talks to it
// through the mcpbridge client.
package sqlmcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrReadOnly is returned for write operations when the server runs with
// READONLY enabled.
var ErrReadOnly = errors.New("database is read-only")

// ErrWrongStatement is returned when a query's leading keyword does not
// match the tool it was sent to.
var ErrWrongStatement = errors.New("statement not allowed for this tool")

// Store wraps the support database with per-tool statement validation.
type Store struct {
	db       *sql.DB
	readOnly bool
}

// NewStore wraps db. With readOnly set, every mutating operation fails
// with ErrReadOnly.
func NewStore(db *sql.DB, readOnly bool) *Store {
	return &Store{db: db, readOnly: readOnly}
}

// Read runs a SELECT and returns rows as maps keyed by column name.
func (s *Store) Read(ctx context.Context, query string) ([]map[string]any, error) {
	if kw := firstKeyword(query); kw != "select" {
		return nil, fmt.Errorf("%w: read_data requires SELECT, got %q", ErrWrongStatement, kw)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Insert runs an INSERT and returns the number of affected rows.
func (s *Store) Insert(ctx context.Context, query string) (int64, error) {
	if s.readOnly {
		return 0, ErrReadOnly
	}
	if kw := firstKeyword(query); kw != "insert" {
		return 0, fmt.Errorf("%w: insert_data requires INSERT, got %q", ErrWrongStatement, kw)
	}
	return s.exec(ctx, query)
}

// Update runs an UPDATE or DELETE and returns the number of affected rows.
func (s *Store) Update(ctx context.Context, query string) (int64, error) {
	if s.readOnly {
		return 0, ErrReadOnly
	}
	if kw := firstKeyword(query); kw != "update" && kw != "delete" {
		return 0, fmt.Errorf("%w: update_data requires UPDATE or DELETE, got %q", ErrWrongStatement, kw)
	}
	return s.exec(ctx, query)
}

// CreateTable runs a CREATE TABLE statement.
func (s *Store) CreateTable(ctx context.Context, query string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if kw := firstKeyword(query); kw != "create" {
		return fmt.Errorf("%w: create_table requires CREATE, got %q", ErrWrongStatement, kw)
	}
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// DescribeTable returns the column layout of a table via PRAGMA table_info.
func (s *Store) DescribeTable(ctx context.Context, table string) ([]map[string]any, error) {
	if !validTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	// PRAGMA does not support bound parameters; the name is validated above.
	return s.queryRows(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
}

func (s *Store) exec(ctx context.Context, query string) (int64, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) queryRows(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// firstKeyword lower-cases the first SQL token of query.
func firstKeyword(query string) string {
	fields := strings.Fields(strings.TrimSpace(query))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTableName(name string) bool {
	return tableNameRe.MatchString(name)
}

// normalizeValue converts driver types to JSON-friendly values.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
