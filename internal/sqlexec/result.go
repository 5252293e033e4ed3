// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Result is a fully materialized result set. Rows are in database order and every row has
// len(Columns) values.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// RowCount returns the number of rows.
func (r Result) RowCount() int { return len(r.Rows) }

// Cell returns the display text of the value at row i, column j.
func (r Result) Cell(i, j int) string {
	if i < 0 || i >= len(r.Rows) || j < 0 || j >= len(r.Rows[i]) {
		return ""
	}
	return FormatValue(r.Rows[i][j])
}

// Strings returns the whole result as display text, one slice per row.
func (r Result) Strings() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = FormatValue(v)
		}
	}
	return out
}

// MarshalJSON implements custom JSON marshaling for Result to handle pgx types properly.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	a := alias(r)
	if a.Columns == nil {
		a.Columns = []string{}
	}
	a.Rows = make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		a.Rows[i] = make([]any, len(row))
		for j, v := range row {
			a.Rows[i][j] = JSONValue(v)
		}
	}
	return json.Marshal(a)
}

// JSONValue converts a value returned by pgx into something that encodes cleanly:
// UUIDs as their canonical string and raw bytes as a \x hex literal.
func JSONValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return fmt.Sprintf("\\x%x", val)
	}
	return v
}

// Date is a value read from a column of type date. pgx decodes dates and timestamps into
// the same time.Time, so the executor tags date columns to keep them apart.
type Date struct {
	time.Time
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time.Format(time.DateOnly) }

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// FormatValue renders a value returned by pgx for display. NULL becomes "NULL".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		if utf8.Valid(val) {
			return string(val)
		}
		return fmt.Sprintf("\\x%x", val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case Date:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case map[string]any, []any:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
	case driver.Valuer:
		// pgtype.Numeric, pgtype.Interval and friends render through their driver value.
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		if dv == nil {
			return "NULL"
		}
		return FormatValue(dv)
	}
	return fmt.Sprint(v)
}

// Float extracts a numeric value for charting. ok is false for non-numeric values.
func Float(v any) (f float64, ok bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int16:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return 0, false
		}
		return Float(dv)
	}
	return 0, false
}
