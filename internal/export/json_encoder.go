package export

import (
	"bufio"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"jobdash/cli/internal/sqlexec"
)

// JSONEncoder writes JSON Lines: one object per row, keys in column order.
type JSONEncoder struct {
	w       *bufio.Writer
	columns [][]byte
	err     error
}

// NewJSONEncoder creates a JSON Lines encoder.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: bufio.NewWriter(w)}
}

// WriteHeader captures the column names used as object keys.
func (e *JSONEncoder) WriteHeader(columns []string) error {
	e.columns = make([][]byte, len(columns))
	for i, c := range columns {
		key, err := json.Marshal(c)
		if err != nil {
			e.err = err
			return err
		}
		e.columns[i] = key
	}
	return nil
}

func (e *JSONEncoder) WriteRow(values []any) error {
	if e.err != nil {
		return e.err
	}

	e.w.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			e.w.WriteByte(',')
		}
		if i < len(e.columns) {
			e.w.Write(e.columns[i])
		} else {
			e.w.WriteString(`"column_` + strconv.Itoa(i+1) + `"`)
		}
		e.w.WriteByte(':')

		data, err := json.Marshal(sqlexec.JSONValue(v))
		if err != nil {
			e.err = err
			return err
		}
		e.w.Write(data)
	}
	if _, err := e.w.WriteString("}\n"); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *JSONEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.Flush(); err != nil {
		e.err = err
	}
	return e.err
}

func (e *JSONEncoder) Error() error {
	return e.err
}

func (e *JSONEncoder) Close() error {
	return e.Flush()
}
