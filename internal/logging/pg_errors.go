// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBErrorType represents the category of a database failure
type DBErrorType int

const (
	DBErrorUnknown DBErrorType = iota
	DBErrorMissingRelation
	DBErrorSyntax
	DBErrorPermission
	DBErrorReadOnly
	DBErrorCanceled
	DBErrorConnection
)

func (t DBErrorType) String() string {
	switch t {
	case DBErrorMissingRelation:
		return "missing_relation"
	case DBErrorSyntax:
		return "syntax"
	case DBErrorPermission:
		return "permission"
	case DBErrorReadOnly:
		return "read_only"
	case DBErrorCanceled:
		return "canceled"
	case DBErrorConnection:
		return "connection"
	}
	return "unknown"
}

// ClassifyDBError categorizes an error returned by pgx. PostgreSQL errors are classified
// by SQLSTATE; anything else by its Go type or message.
func ClassifyDBError(err error) DBErrorType {
	if err == nil {
		return DBErrorUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01" || pgErr.Code == "42703" || pgErr.Code == "42883":
			return DBErrorMissingRelation
		case pgErr.Code == "42601":
			return DBErrorSyntax
		case pgErr.Code == "42501":
			return DBErrorPermission
		case pgErr.Code == "25006":
			return DBErrorReadOnly
		case pgErr.Code == "57014":
			return DBErrorCanceled
		case strings.HasPrefix(pgErr.Code, "08"):
			return DBErrorConnection
		}
		return DBErrorUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return DBErrorCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return DBErrorConnection
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "failed to connect") ||
		strings.Contains(lower, "conn closed") || strings.Contains(lower, "broken pipe") {
		return DBErrorConnection
	}

	return DBErrorUnknown
}

// DBErrorHint returns a one-line suggestion for the category, or "" if there is none.
func DBErrorHint(t DBErrorType) string {
	switch t {
	case DBErrorMissingRelation:
		return "Check table and column names; run 'jobdash tables' to list what exists."
	case DBErrorSyntax:
		return "The statement could not be parsed. Check for typos or unbalanced quotes."
	case DBErrorPermission:
		return "The configured database user is not allowed to read this object."
	case DBErrorReadOnly:
		return "The session is read-only; only SELECT statements can run."
	case DBErrorCanceled:
		return "The query was canceled before it finished."
	case DBErrorConnection:
		return "The database could not be reached. The next query will reconnect; run 'jobdash dbinfo' to check settings."
	}
	return ""
}
