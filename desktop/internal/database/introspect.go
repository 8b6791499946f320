package database

import (
	"context"
	"fmt"
	"strings"
)

// TableInfo is a point-in-time view of one table's columns. An absent table
// has Exists=false and no columns.
type TableInfo struct {
	Name    string
	Exists  bool
	Columns []string
}

// Has reports whether the table has the column (case-insensitive)
func (t TableInfo) Has(col string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c, col) {
			return true
		}
	}
	return false
}

// Pick returns the first candidate column present in the table, or ""
func (t TableInfo) Pick(candidates ...string) string {
	for _, cand := range candidates {
		if t.Has(cand) {
			return cand
		}
	}
	return ""
}

// PickAll returns every candidate column present, in candidate order
func (t TableInfo) PickAll(candidates ...string) []string {
	var out []string
	for _, cand := range candidates {
		if t.Has(cand) {
			out = append(out, cand)
		}
	}
	return out
}

// TableExists reports whether a table with that exact name exists
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&one)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return one > 0, nil
}

// Columns returns the live column names of table. A missing table yields an
// empty list, not an error.
func (db *DB) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// HasColumn reports whether table has col
func (db *DB) HasColumn(ctx context.Context, table, col string) (bool, error) {
	info, err := db.Describe(ctx, table)
	if err != nil {
		return false, err
	}
	return info.Has(col), nil
}

// Describe returns a TableInfo for table
func (db *DB) Describe(ctx context.Context, table string) (TableInfo, error) {
	exists, err := db.TableExists(ctx, table)
	if err != nil || !exists {
		return TableInfo{Name: table}, err
	}
	cols, err := db.Columns(ctx, table)
	if err != nil {
		return TableInfo{Name: table}, err
	}
	return TableInfo{Name: table, Exists: true, Columns: cols}, nil
}

// DescribeExisting returns TableInfo for each candidate table that exists,
// preserving candidate order.
func (db *DB) DescribeExisting(ctx context.Context, candidates ...string) ([]TableInfo, error) {
	var out []TableInfo
	for _, name := range candidates {
		info, err := db.Describe(ctx, name)
		if err != nil {
			return out, err
		}
		if info.Exists {
			out = append(out, info)
		}
	}
	return out, nil
}

// Quote quotes an identifier for use in dynamic SQL
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
