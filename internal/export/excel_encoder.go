package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"jobdash/cli/internal/sqlexec"
)

// maxExcelRows is the worksheet row limit of the xlsx format.
const maxExcelRows = 1048576

// ExcelEncoder writes an .xlsx workbook with excelize's StreamWriter.
// The workbook is only written to w on Flush.
type ExcelEncoder struct {
	f         *excelize.File
	sw        *excelize.StreamWriter
	w         io.Writer
	sheetName string
	rowIdx    int
	err       error
	closed    bool
}

// NewExcelEncoder creates a workbook with a single "Results" sheet.
func NewExcelEncoder(w io.Writer) *ExcelEncoder {
	f := excelize.NewFile()
	sheetName := "Results"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return &ExcelEncoder{f: f, err: err}
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return &ExcelEncoder{f: f, err: err}
	}

	return &ExcelEncoder{
		f:         f,
		sw:        sw,
		w:         w,
		sheetName: sheetName,
		rowIdx:    1,
	}
}

func (e *ExcelEncoder) WriteHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, col := range columns {
		row[i] = col
	}
	return e.setRow(row)
}

func (e *ExcelEncoder) WriteRow(values []any) error {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = excelValue(v)
	}
	return e.setRow(row)
}

func (e *ExcelEncoder) setRow(row []any) error {
	if e.err != nil {
		return e.err
	}
	if e.rowIdx > maxExcelRows {
		e.err = fmt.Errorf("excel row limit exceeded (%d rows)", maxExcelRows)
		return e.err
	}

	cell, err := excelize.CoordinatesToCellName(1, e.rowIdx)
	if err != nil {
		e.err = err
		return err
	}
	if err := e.sw.SetRow(cell, row); err != nil {
		e.err = err
		return err
	}
	e.rowIdx++
	return nil
}

// excelValue keeps numbers, booleans and times native and turns everything else into
// guarded text.
func excelValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int64, int32, int16, int, float64, float32, bool:
		return val
	case time.Time:
		return val
	case sqlexec.Date:
		return val.Time
	}
	return cellText(v)
}

func (e *ExcelEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.sw.Flush(); err != nil {
		e.err = err
		return err
	}
	if err := e.f.Write(e.w); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *ExcelEncoder) Error() error {
	return e.err
}

// Close writes the workbook and releases it. Calling Close twice is a no-op.
func (e *ExcelEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	err := e.Flush()
	if e.f != nil {
		_ = e.f.Close()
	}
	return err
}
