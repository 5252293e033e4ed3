// Package render is the only place query outcomes are turned into terminal output.
// It draws result tables and bar charts with pterm and prints rejections and database
// errors in a form the user can act on.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/pterm/pterm"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/logging"
	"jobdash/cli/internal/sqlexec"
	"jobdash/cli/internal/terminal"
)

// ErrNotChartable is returned by Bars when no row has a numeric second column.
var ErrNotChartable = errors.New("result has no numeric second column to chart")

// Renderer writes outcomes to a terminal-like writer.
type Renderer struct {
	w          io.Writer
	chartWidth int
	showTiming bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithChartWidth caps the width of horizontal bar charts.
func WithChartWidth(width int) Option {
	return func(r *Renderer) { r.chartWidth = width }
}

// WithTiming prints the query duration under every result table.
func WithTiming(show bool) Option {
	return func(r *Renderer) { r.showTiming = show }
}

// New creates a Renderer writing to w, or to stdout when w is nil.
func New(w io.Writer, opts ...Option) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	r := &Renderer{
		w:          w,
		chartWidth: terminal.Width() * 2 / 3,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DisableColor turns off all pterm styling, for --no-color and non-terminal output.
func DisableColor() {
	pterm.DisableColor()
}

// Title prints a section heading.
func (r *Renderer) Title(title string) {
	if title == "" {
		return
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(title))
}

// Outcome prints title followed by the outcome: a table (and chart) on success, a warning
// when the input was rejected, an error with a hint when the query failed.
func (r *Renderer) Outcome(title string, o sqlexec.Outcome, chart catalog.Chart) {
	r.Title(title)
	o.Visit(&outcomeView{r: r, chart: chart})
}

type outcomeView struct {
	r     *Renderer
	chart catalog.Chart
}

func (v *outcomeView) Success(s sqlexec.Success) {
	v.r.Table(s.Result)
	if v.r.showTiming {
		fmt.Fprintln(v.r.w, pterm.NewStyle(pterm.FgGray).Sprintf("(%s)", s.Elapsed.Round(time.Millisecond)))
	}
	if v.chart == catalog.ChartBar && s.Result.RowCount() > 0 {
		if err := v.r.Chart(s.Result); err != nil {
			pterm.Warning.WithWriter(v.r.w).Println("Chart skipped: " + err.Error())
		}
	}
}

func (v *outcomeView) Rejected(rej sqlexec.Rejected) {
	pterm.Warning.WithWriter(v.r.w).Println(rej.Reason)
}

func (v *outcomeView) Failure(f sqlexec.Failure) {
	pterm.Error.WithWriter(v.r.w).Println(f.Message())
	if hint := logging.DBErrorHint(logging.ClassifyDBError(f.Err)); hint != "" {
		fmt.Fprintln(v.r.w, pterm.NewStyle(pterm.FgGray).Sprint("   "+hint))
	}
}

// Scalar prints a single-value result as one success line, "label: value". Anything else,
// including a rejection or failure, is printed as Outcome would. It reports whether the
// value was printed.
func (r *Renderer) Scalar(label string, o sqlexec.Outcome) bool {
	if s, ok := o.(sqlexec.Success); ok && s.Result.RowCount() == 1 && len(s.Result.Columns) > 0 {
		pterm.Success.WithWriter(r.w).Println(label + ": " + s.Result.Cell(0, 0))
		return true
	}
	r.Outcome("", o, catalog.ChartNone)
	return false
}

// TableNotFound warns that the schema browser found no columns for schema.name.
func (r *Renderer) TableNotFound(schema, name string) {
	pterm.Warning.WithWriter(r.w).Printfln("Table %s.%s not found. Run 'jobdash tables' to list tables.", schema, name)
}

// Table prints the result with a header row and a row count footer.
func (r *Renderer) Table(res sqlexec.Result) {
	data := make([][]string, 0, res.RowCount()+1)
	data = append(data, res.Columns)
	data = append(data, res.Strings()...)

	_ = pterm.DefaultTable.
		WithHasHeader().
		WithHeaderRowSeparator("-").
		WithData(data).
		WithWriter(r.w).
		Render()

	fmt.Fprintln(r.w, pterm.NewStyle(pterm.FgGray).Sprint(rowCount(res.RowCount())))
}

// Chart prints a horizontal bar chart of the result.
func (r *Renderer) Chart(res sqlexec.Result) error {
	bars, err := Bars(res)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.w)
	return pterm.DefaultBarChart.
		WithHorizontal().
		WithShowValue().
		WithWidth(r.chartWidth).
		WithBars(bars).
		WithWriter(r.w).
		Render()
}

// Bars converts a result into chart bars: the first column is the label, the second the
// value. Rows whose second column is not numeric are skipped.
func Bars(res sqlexec.Result) (pterm.Bars, error) {
	if len(res.Columns) < 2 {
		return nil, ErrNotChartable
	}
	var bars pterm.Bars
	for i, row := range res.Rows {
		if len(row) < 2 {
			continue
		}
		value, ok := sqlexec.Float(row[1])
		if !ok {
			continue
		}
		bars = append(bars, pterm.Bar{
			Label: res.Cell(i, 0),
			Value: int(math.Round(value)),
		})
	}
	if len(bars) == 0 {
		return nil, ErrNotChartable
	}
	return bars, nil
}

func rowCount(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return fmt.Sprintf("(%d rows)", n)
}
