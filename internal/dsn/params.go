// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn turns PostgreSQL connection parameters into connection strings and back.
// Parameters reach jobdash either as a single URL (flag, environment, keychain) or as
// discrete host/user/password/database/port settings; both forms end up as Params so the
// required-field check happens in one place.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// DefaultPort is the PostgreSQL port used when none is given.
const DefaultPort = "5432"

// Params contains the discrete parameters of a PostgreSQL connection.
type Params struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	// SSLMode is passed through as the sslmode query parameter when set.
	SSLMode string
	// Extra holds any other query parameters (connect_timeout, application_name, ...).
	Extra map[string]string
}

// Missing returns the names of required parameters that are empty, in a stable order.
func (p Params) Missing() []string {
	var missing []string
	if strings.TrimSpace(p.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(p.Database) == "" {
		missing = append(missing, "database")
	}
	if strings.TrimSpace(p.User) == "" {
		missing = append(missing, "user")
	}
	if p.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Validate checks that all required parameters are present and the port is numeric.
func (p Params) Validate() error {
	if missing := p.Missing(); len(missing) > 0 {
		return NewParseError("", "missing required connection parameters: "+strings.Join(missing, ", "),
			"set them in the config file, JOBDASH_DB_* variables, or run 'jobdash connect'")
	}
	if p.Port != "" && !isNumeric(p.Port) {
		return NewParseError("", fmt.Sprintf("invalid port number: %s", p.Port), "port must be numeric")
	}
	return nil
}

// URL renders the parameters as a canonical postgresql:// connection string.
// Userinfo is percent-encoded, IPv6 hosts are bracketed, and query parameters are sorted
// so the same Params always yield the same string.
func (p Params) URL() string {
	port := p.Port
	if port == "" {
		port = DefaultPort
	}
	u := url.URL{
		Scheme: "postgresql",
		Host:   net.JoinHostPort(p.Host, port),
		Path:   "/" + p.Database,
	}
	switch {
	case p.User == "":
	case p.Password == "":
		u.User = url.User(p.User)
	default:
		u.User = url.UserPassword(p.User, p.Password)
	}

	query := url.Values{}
	for k, v := range p.Extra {
		query.Set(k, v)
	}
	if p.SSLMode != "" {
		query.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// Redacted is URL with the password replaced by ***.
func (p Params) Redacted() string {
	if p.Password == "" {
		return p.URL()
	}
	masked := p
	masked.Password = ""
	// The username is escaped, so the first '@' ends the userinfo.
	return strings.Replace(masked.URL(), "@", ":***@", 1)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseError represents an error that occurred while reading connection parameters.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid connection settings: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid connection settings: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
