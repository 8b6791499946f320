package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one result row keyed by lower-cased column name. Used where the
// selected columns are only known at run time.
type Row map[string]interface{}

// ScanRows reads every row of rs into Rows and closes rs
func ScanRows(rs *sql.Rows) ([]Row, error) {
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var out []Row
	for rs.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[strings.ToLower(c)] = vals[i]
		}
		out = append(out, row)
	}
	return out, rs.Err()
}

// String returns the column as text; NULL and missing columns yield ""
func (r Row) String(col string) string {
	return AsString(r[strings.ToLower(col)])
}

// Int64 returns the column as an integer; NULL, missing or non-numeric yield 0
func (r Row) Int64(col string) int64 {
	return AsInt64(r[strings.ToLower(col)])
}

// Float returns the column as a float; NULL, missing or non-numeric yield 0
func (r Row) Float(col string) float64 {
	return AsFloat(r[strings.ToLower(col)])
}

// AsString converts a scanned sqlite value to text
func AsString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format("2006-01-02")
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// AsInt64 converts a scanned sqlite value to an integer
func AsInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case string, []byte:
		s := strings.TrimSpace(AsString(t))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	}
	return 0
}

// AsFloat converts a scanned sqlite value to a float
func AsFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case string, []byte:
		if f, err := strconv.ParseFloat(strings.TrimSpace(AsString(t)), 64); err == nil {
			return f
		}
	}
	return 0
}

// NullableID maps 0 to NULL for optional foreign references
func NullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
