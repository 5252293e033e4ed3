// Package export writes query results to files in machine-readable formats.
// The terminal table is drawn by the render package; export covers JSON Lines, CSV and
// Excel, for results the user wants to keep or feed into other tools.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"jobdash/cli/internal/sqlexec"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "jsonl", "ndjson":
		return FormatJSON, nil
	case "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, csv or xlsx)", s)
}

// FormatFromPath guesses the format from a file extension, or returns "" if it cannot.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	}
	return ""
}

// Encoder defines a common interface for the export formats.
type Encoder interface {
	// WriteHeader writes the column names. Called exactly once before any rows.
	WriteHeader(columns []string) error

	// WriteRow writes one row; len(values) matches the header.
	WriteRow(values []any) error

	// Flush writes buffered data to the underlying writer.
	Flush() error

	// Error returns the first error that occurred during encoding, if any.
	Error() error

	// Close flushes the encoder and releases any resources.
	io.Closer
}

// NewEncoder returns the Encoder for f writing to w. FormatTable has no encoder.
func NewEncoder(f Format, w io.Writer) (Encoder, error) {
	switch f {
	case FormatJSON:
		return NewJSONEncoder(w), nil
	case FormatCSV:
		return NewCSVEncoder(w), nil
	case FormatXLSX:
		return NewExcelEncoder(w), nil
	}
	return nil, fmt.Errorf("format %q cannot be exported", f)
}

// Write streams res through enc and closes it.
func Write(enc Encoder, res sqlexec.Result) error {
	if err := enc.WriteHeader(res.Columns); err != nil {
		_ = enc.Close()
		return err
	}
	for _, row := range res.Rows {
		if err := enc.WriteRow(row); err != nil {
			_ = enc.Close()
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return enc.Error()
}

// WriteResult encodes res in format f to w.
func WriteResult(f Format, w io.Writer, res sqlexec.Result) error {
	enc, err := NewEncoder(f, w)
	if err != nil {
		return err
	}
	return Write(enc, res)
}

// guardFormula prefixes text that a spreadsheet would evaluate as a formula.
func guardFormula(s string) string {
	if len(s) > 0 {
		switch s[0] {
		case '=', '+', '-', '@':
			return "'" + s
		}
	}
	return s
}

// cellText renders a value as text; only textual values get the formula guard, so
// negative numbers stay numbers.
func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return guardFormula(val)
	case []byte:
		return guardFormula(sqlexec.FormatValue(val))
	}
	return sqlexec.FormatValue(v)
}
