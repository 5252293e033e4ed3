// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"errors"
	"strings"
)

// ErrNotSelect is returned for free-form input that does not start with SELECT.
var ErrNotSelect = errors.New("only SELECT queries are allowed")

// ValidateReadOnly checks that sqlText, trimmed and lowercased, starts with "select".
//
// This is a guard against obviously wrong input, not a sandbox: a statement starting with
// SELECT can still call functions with side effects. Read-only access has to be enforced
// with database privileges. The text itself is never modified.
func ValidateReadOnly(sqlText string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(sqlText)), "select") {
		return ErrNotSelect
	}
	return nil
}
