// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"jobdash/cli/internal/catalog"
	"jobdash/cli/internal/export"
	"jobdash/cli/internal/render"
	"jobdash/cli/internal/sqlexec"
)

// outputOptions holds --output and --out for commands that print results.
type outputOptions struct {
	format string
	path   string
}

func (o *outputOptions) register(fs *pflag.FlagSet) {
	fs.StringVarP(&o.format, "output", "o", "", "Output format: table, json, csv or xlsx")
	fs.StringVar(&o.path, "out", "", "Write the result to this file instead of stdout")
}

// resolve returns the effective format. Without --output the file extension decides.
func (o outputOptions) resolve() (export.Format, error) {
	if o.format == "" && o.path != "" {
		if f := export.FormatFromPath(o.path); f != "" {
			return f, nil
		}
	}
	f, err := export.ParseFormat(o.format)
	if err != nil {
		return "", err
	}
	if f == export.FormatTable && o.path != "" {
		return "", errors.New("table output cannot be written to a file; use --output json, csv or xlsx")
	}
	return f, nil
}

// emit shows one outcome. Successful results go through the exporter when a machine
// format was requested; rejections and failures are always rendered on the terminal.
func emit(r *render.Renderer, title string, out sqlexec.Outcome, chart catalog.Chart, opts outputOptions) error {
	format, err := opts.resolve()
	if err != nil {
		return err
	}
	success, ok := out.(sqlexec.Success)
	if format == export.FormatTable || !ok {
		r.Outcome(title, out, chart)
		return nil
	}

	var w io.Writer = os.Stdout
	if opts.path != "" {
		f, err := os.Create(opts.path)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.path, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteResult(format, w, success.Result); err != nil {
		return fmt.Errorf("write %s output: %w", format, err)
	}
	if opts.path != "" {
		pterm.Success.WithWriter(os.Stderr).Printfln("Saved %d rows to %s", success.Result.RowCount(), opts.path)
	}
	return nil
}
