// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls the diagnostic logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Empty means warn.
	Level string
	// Verbose forces debug level regardless of Level.
	Verbose bool
	// JSON switches from the human console format to one JSON object per line.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds the zerolog logger used for diagnostics.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	var w io.Writer = out
	if !opts.JSON {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a config string to a zerolog level, falling back to warn so that
// normal runs keep stderr quiet.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.WarnLevel
	}
	return lvl
}
