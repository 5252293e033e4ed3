// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the diagnostic logger and secret masking used across jobdash.
// Diagnostics go to a zerolog console logger on stderr so they never interleave with
// rendered query results on stdout. Anything that may carry a connection string is passed
// through Mask first.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reDSNPass  = regexp.MustCompile(`(?i)(postgres(?:ql)?://)([^:@/\s]+):([^\s]+)(@)`)
	reDSNUser  = regexp.MustCompile(`(?i)(postgres(?:ql)?://)([^:@/\s]+)(@)`)
)

// secretEnvKeys are env-style KEY=VALUE pairs whose value must never be shown.
var secretEnvKeys = []string{"PGPASSWORD", "JOBDASH_DB_PASSWORD", "JOBDASH_DSN", "DATABASE_URL"}

// Mask replaces sensitive values in the input string with "*".
// For DSN strings, both username and password are masked.
func Mask(s string) string {
	out := s
	out = reDSNPass.ReplaceAllString(out, "$1*:*$4")
	out = reDSNUser.ReplaceAllString(out, "$1*$3")
	out = rePassword.ReplaceAllString(out, "$1***")
	for _, k := range secretEnvKeys {
		re := regexp.MustCompile(regexp.QuoteMeta(k) + `=\S+`)
		out = re.ReplaceAllString(out, k+"=***")
	}
	return out
}

// MaskSQL shortens a statement for log lines: whitespace is collapsed and the result is
// cut at limit runes.
func MaskSQL(sql string, limit int) string {
	collapsed := strings.Join(strings.Fields(sql), " ")
	r := []rune(collapsed)
	if limit > 0 && len(r) > limit {
		return string(r[:limit]) + "…"
	}
	return collapsed
}
